package model

import "resort/shared/model"

const (
	TableName  = "inquiries"
	EntityName = "inquiry"

	FieldID      = "id"
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldMessage = "message"
	FieldStatus  = "status"

	StatusUnread = "UNREAD"
	StatusRead   = "READ"
)

type Inquiry struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Email   string `db:"email"`
	Phone   string `db:"phone"`
	Message string `db:"message"`
	Status  string `db:"status"`
	model.Metadata
}
