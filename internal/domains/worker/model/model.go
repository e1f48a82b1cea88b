package model

import "homecare/shared/model"

const (
	TableName  = "workers"
	EntityName = "worker"

	FieldID     = "id"
	FieldName   = "name"
	FieldPhone  = "phone"
	FieldEmail  = "email"
	FieldStatus = "status"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusOnLeave  Status = "ON_LEAVE"
)

type Worker struct {
	ID     string  `db:"id"`
	Name   string  `db:"name"`
	Phone  string  `db:"phone"`
	Email  *string `db:"email"`
	Status Status  `db:"status"`
	model.Metadata
}
