package services

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// DeliveryError means the contact form could not be forwarded.
type DeliveryError struct{ Message string }

func (e *DeliveryError) Error() string { return e.Message }
