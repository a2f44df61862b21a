package domain

import "errors"

// Виды ошибок ядра. Операции оборачивают их через fmt.Errorf("%w: ...").
var (
	// ErrValidation - некорректный или противоречивый ввод.
	ErrValidation = errors.New("validation error")

	// ErrNotFound - партия, заказ, процесс или продукт не найдены.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState - операция запрещена в текущем состоянии жизненного цикла.
	ErrInvalidState = errors.New("invalid state")

	// ErrStorage - сбой транзакционного хранилища.
	ErrStorage = errors.New("storage error")
)

// IsKnown возвращает true, если err уже относится к одному из видов ошибок ядра.
func IsKnown(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrStorage)
}
