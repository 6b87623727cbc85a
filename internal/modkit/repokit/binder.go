package repokit

// Binder defers the choice of Queryer so one repo constructor serves both
// pooled and transactional execution
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor function into a Binder
type BindFunc[T any] func(Queryer) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
