package loadability

// ValueCloner is an interface for cloning values.
// It is used to isolate values stored in a cache, and values handed to several waiters of the same load.
// The CloneValue method should return a deep copy of the input value.
type ValueCloner[V ValueConstraint] interface {
	CloneValue(V) V
}

// ValueClonerFunc is a function type that implements the ValueCloner interface.
type ValueClonerFunc[V ValueConstraint] func(v V) V

// CloneValue calls the function.
func (f ValueClonerFunc[V]) CloneValue(v V) V {
	return f(v)
}

// NopValueCloner is a value cloner that does not clone values.
// It is used when values do not need to be cloned. (e.g. when the values are primitive types or immutable usage)
type NopValueCloner[V ValueConstraint] struct{}

// CloneValue returns the input value.
func (NopValueCloner[V]) CloneValue(v V) V {
	return v
}

// DefaultValueCloner returns a default cloner for the given value type.
// Types with a Clone or DeepCopy method returning V are cloned through it.
// Every other type, composite ones included, gets a NopValueCloner: such values are shared between
// the cache and its readers and must be treated as immutable.
func DefaultValueCloner[V ValueConstraint]() ValueCloner[V] {
	var zero V
	return defaultValueClonerAny[V](zero)
}

func defaultValueClonerAny[V ValueConstraint](v any) ValueCloner[V] {
	type cloner interface {
		Clone() V
	}
	type deepCopier interface {
		DeepCopy() V
	}

	switch v.(type) {
	case cloner:
		return ValueClonerFunc[V](func(v V) V {
			var a any = v
			return a.(cloner).Clone()
		})

	case deepCopier:
		return ValueClonerFunc[V](func(v V) V {
			var a any = v
			return a.(deepCopier).DeepCopy()
		})

	default:
		return NopValueCloner[V]{}
	}
}
