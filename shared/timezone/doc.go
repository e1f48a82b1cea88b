// Package timezone pins every wall-clock conversion to the application timezone.
//
// Booking dates and times arrive as local values ("2026-03-03", "09:00") and are
// stored as instants; Parse and Format convert between the two. The zone comes from
// APP_TIMEZONE and is loaded when the package is imported.
//
//	start, err := timezone.Parse(constant.DayTimeFormat, "2026-03-03 09:00")
//	from, to, err := timezone.Day("2026-03-03")
package timezone
