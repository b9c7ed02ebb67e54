// Package errors: CRM 서비스 전체에서 사용되는 에러 타입들을 정의한다.
// 표준 Go 에러 스타일(Unwrap 지원)을 따르며, 폼 검증 실패는 이 패키지가 아니라
// 데이터(ValidationResult)로 반환된다는 점에 유의한다.
package errors

import (
	stderrors "errors"
	"fmt"
)

// CacheError: 캐시 작업 중 발생한 에러
type CacheError struct {
	Operation string // get, set, delete 등
	Key       string // 캐시 키
	Err       error  // 원인 에러
}

func (e CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache error operation=%s key=%s", e.Operation, e.Key)
	}
	return fmt.Sprintf("cache error operation=%s key=%s: %v", e.Operation, e.Key, e.Err)
}

func (e CacheError) Unwrap() error { return e.Err }

// NewCacheError: 캐시 에러를 생성한다.
func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// NotFoundError: 요청한 리소스가 없거나 소유권이 없는 경우
// 소유권 위반은 존재 여부를 노출하지 않기 위해 동일하게 처리한다.
type NotFoundError struct {
	Resource string // client, note, opportunity 등
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found resource=%s id=%s", e.Resource, e.ID)
}

// NewNotFoundError: 리소스 없음 에러를 생성한다.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound: 에러가 NotFoundError인지 확인한다.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}

// ValidationError: 입력 검증 실패 에러 (단건)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error field=%s: %s", e.Field, e.Message)
}

// NewValidationError: 검증 에러를 생성한다.
func NewValidationError(message, field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidation: 에러가 ValidationError인지 확인한다.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// AsValidation: 에러를 ValidationError로 추출한다.
func AsValidation(err error, target **ValidationError) bool {
	return stderrors.As(err, target)
}

// TransitionError: 허용되지 않은 파이프라인 단계 전이
type TransitionError struct {
	From string
	To   string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("illegal stage transition from=%s to=%s", e.From, e.To)
}

// NewTransitionError: 단계 전이 에러를 생성한다.
func NewTransitionError(from, to string) *TransitionError {
	return &TransitionError{From: from, To: to}
}

// IsTransition: 에러가 TransitionError인지 확인한다.
func IsTransition(err error) bool {
	var te *TransitionError
	return stderrors.As(err, &te)
}

// ServiceError: 내부 서비스 로직 에러
type ServiceError struct {
	Service   string // 서비스 이름
	Operation string // 작업 이름
	Err       error  // 원인 에러
}

func (e ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("service error service=%s operation=%s", e.Service, e.Operation)
	}
	return fmt.Sprintf("service error service=%s operation=%s: %v", e.Service, e.Operation, e.Err)
}

func (e ServiceError) Unwrap() error { return e.Err }

// NewServiceError: 서비스 에러를 생성한다.
func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       cause,
	}
}
