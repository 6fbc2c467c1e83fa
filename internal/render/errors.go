package render

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFeed возвращается, если корень документа не <rss version="2.0">.
	ErrInvalidFeed = errors.New("not a valid RSS 2.0 feed")
	// ErrStructure объединяет все ошибки отсутствующих обязательных элементов.
	ErrStructure = errors.New("required element missing")
)

// StructuralError сообщает, что в элементе Parent нет обязательного элемента Element.
// Совпадает с ErrStructure через errors.Is.
type StructuralError struct {
	Parent  string
	Element string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("required element <%s> missing in <%s>", e.Element, e.Parent)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructure
}
