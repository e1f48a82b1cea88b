package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"homecare/infras/otel"
	"homecare/infras/postgres"
	"homecare/internal/availability"
	"homecare/internal/domains/booking/model"
	"homecare/internal/domains/booking/model/dto"
	"homecare/internal/lifecycle"
	"homecare/shared/constant"
	gDto "homecare/shared/dto"
	"homecare/shared/logger"
	gRepo "homecare/shared/repository"
	"homecare/shared/timezone"

	"github.com/Masterminds/squirrel"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// likeEscaper makes search text match literally under ILIKE's default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Search(ctx context.Context, params gDto.QueryParams, filter dto.AdminFilter) ([]model.Booking, int, error)
	ActiveCommitments(ctx context.Context, workerID string, window availability.Interval) ([]availability.Commitment, error)
	ExistForService(ctx context.Context, serviceID string) (bool, error)
	CountUpcoming(ctx context.Context, workerID string, from time.Time) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

func activeStatuses() []string {
	statuses := make([]string, len(lifecycle.Active))
	for i, status := range lifecycle.Active {
		statuses[i] = string(status)
	}

	return statuses
}

// ActiveCommitments lists the worker's pending and confirmed bookings that intersect
// window. Inside a transaction it reads through that transaction.
func (r *repositoryImpl) ActiveCommitments(ctx context.Context, workerID string, window availability.Interval) ([]availability.Commitment, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ActiveCommitments")
	defer scope.End()

	query, args, err := psql.
		Select(model.FieldID, model.FieldStartTime, model.FieldEndTime).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldWorkerID: workerID, model.FieldStatus: activeStatuses()}).
		Where(squirrel.Lt{model.FieldStartTime: window.End}).
		Where(squirrel.Gt{model.FieldEndTime: window.Start}).
		OrderBy(model.FieldStartTime).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build commitments query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var rows []struct {
		ID        string    `db:"id"`
		StartTime time.Time `db:"start_time"`
		EndTime   time.Time `db:"end_time"`
	}

	if err = r.Reader(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get commitments (%s): %w", model.EntityName, err)
	}

	commitments := make([]availability.Commitment, 0, len(rows))
	for _, row := range rows {
		commitments = append(commitments, availability.Commitment{
			BookingID: row.ID,
			Interval:  availability.Interval{Start: row.StartTime, End: row.EndTime},
		})
	}

	return commitments, nil
}

func (r *repositoryImpl) ExistForService(ctx context.Context, serviceID string) (bool, error) {
	return r.Exist(ctx, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldServiceID, Value: serviceID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	})
}

func (r *repositoryImpl) CountUpcoming(ctx context.Context, workerID string, from time.Time) (int, error) {
	return r.Count(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldWorkerID, Value: workerID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: activeStatuses(), Operator: gDto.FilterOperatorIn, Table: model.TableName},
			gDto.Filter{Field: model.FieldEndTime, Value: from, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		},
	})
}

func searchConditions(filter dto.AdminFilter) (squirrel.And, error) {
	conditions := squirrel.And{}

	if filter.Status != "" {
		conditions = append(conditions, squirrel.Eq{model.FieldStatus: string(filter.Status)})
	}

	if filter.Day != "" {
		from, to, err := timezone.Day(filter.Day)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", filter.Day, err)
		}

		conditions = append(conditions,
			squirrel.GtOrEq{model.FieldStartTime: from},
			squirrel.Lt{model.FieldStartTime: to},
		)
	}

	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{model.FieldLocation: pattern},
			squirrel.ILike{model.FieldNote: pattern},
		})
	}

	return conditions, nil
}

// Search backs the operator listing. params.SortBy must already be whitelisted.
func (r *repositoryImpl) Search(ctx context.Context, params gDto.QueryParams, filter dto.AdminFilter) ([]model.Booking, int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Search")
	defer scope.End()

	conditions, err := searchConditions(filter)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.Select("COUNT(" + model.FieldID + ")").From(model.TableName).Where(conditions).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err = r.Reader(ctx).GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, 0, fmt.Errorf("failed to count data (%s): %w", model.EntityName, err)
	}

	builder := psql.Select(r.SelectColumns()...).From(model.TableName).Where(conditions)

	if params.SortBy != "" && params.SortDir != "" {
		builder = builder.OrderBy(params.SortBy + " " + params.SortDir)
	}

	if params.Limit > 0 {
		builder = builder.Limit(uint64(params.Limit))

		if params.Page > 1 {
			builder = builder.Offset(uint64((params.Page - 1) * params.Limit))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build search query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	bookings := []model.Booking{}
	if err = r.Reader(ctx).SelectContext(ctx, &bookings, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, 0, fmt.Errorf("failed to search data (%s): %w", model.EntityName, err)
	}

	return bookings, total, nil
}
