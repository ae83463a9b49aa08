package dto

// BaseError универсальный корневой формат ошибки
// Code — машинно-ориентированный код (snake_case)
// Message — краткое человеко-читаемое описание (может локализоваться на клиенте)
// Details — дополнительная строка (пояснение / fragment)
// Fields — для валидационных ошибок (имя поля + текст)
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError отдельная ошибка по конкретному полю
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// Предопределённые обёртки (семантические типы) — удобны в swagger для разных @Failure.
// Все совместимы по JSON, просто повышают читаемость документации.

// ValidationErrorResponse 400
// Code: "validation_error"
type ValidationErrorResponse BaseError

// UnauthorizedErrorResponse 401
// Code: "unauthorized"
type UnauthorizedErrorResponse BaseError

// ForbiddenErrorResponse 403
// Code: "forbidden"
type ForbiddenErrorResponse BaseError

// NotFoundErrorResponse 404
// Code: "not_found"
type NotFoundErrorResponse BaseError

// ConflictErrorResponse 409
// Пример: заявка уже обработана другим модератором
// Code: "invalid_state"
type ConflictErrorResponse BaseError

// InternalErrorResponse 500
// Code: "internal_error"
type InternalErrorResponse BaseError

// StockErrorResponse 422 — нарушение складского инварианта.
// Code: "insufficient_stock" или "over_return", детали в Stock.
type StockErrorResponse struct {
	BaseError
	Stock *StockErrorDetail `json:"stock,omitempty"`
}

// StockErrorDetail — что именно не влезло. Available для insufficient_stock,
// Held для over_return; второе поле остаётся нулевым.
type StockErrorDetail struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Available int32  `json:"available,omitempty"`
	Held      int32  `json:"held,omitempty"`
	Requested int32  `json:"requested"`
}

func NewValidationError(msg string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse(BaseError{Code: "validation_error", Message: msg, Fields: fields})
}
func NewUnauthorizedError(msg string) UnauthorizedErrorResponse {
	return UnauthorizedErrorResponse(BaseError{Code: "unauthorized", Message: msg})
}
func NewForbiddenError(msg string) ForbiddenErrorResponse {
	return ForbiddenErrorResponse(BaseError{Code: "forbidden", Message: msg})
}
func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: "not_found", Message: msg})
}
func NewConflictError(msg string) ConflictErrorResponse {
	return ConflictErrorResponse(BaseError{Code: "invalid_state", Message: msg})
}
func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse(BaseError{Code: "internal_error", Message: "internal server error", Details: details})
}
func NewStockError(code, msg string, detail *StockErrorDetail) StockErrorResponse {
	return StockErrorResponse{
		BaseError: BaseError{Code: code, Message: msg},
		Stock:     detail,
	}
}
