package value

// OwnedRefs returns the object's direct owned references, per the
// traversal contract in spec §4.2: tuple elements; keyval/named key and
// value; lambda parameter tuple, result, capture, body; wrapper inner;
// instruction constant pool; filter source and predicate.
//
// Lambda.Self is deliberately excluded: it is reported by WeakRefs
// instead and never treated as an owning edge, so that self-binding
// cycles collect together rather than pinning each other alive.
func (o *Object) OwnedRefs() []*Object {
	switch o.Kind {
	case KindKeyVal, KindNamed:
		return []*Object{o.KV[0], o.KV[1]}
	case KindTuple:
		return o.Tuple
	case KindLazyFilter:
		return []*Object{o.Filter[0], o.Filter[1]}
	case KindWrapper:
		if o.Wrapped == nil {
			return nil
		}
		return []*Object{o.Wrapped}
	case KindInstructions:
		if o.Instr == nil {
			return nil
		}
		return o.Instr.Consts
	case KindLambda:
		l := o.Lambda
		if l == nil {
			return nil
		}
		refs := make([]*Object, 0, 4)
		if l.Params != nil {
			refs = append(refs, l.Params)
		}
		if l.Result != nil {
			refs = append(refs, l.Result)
		}
		if l.Body != nil {
			refs = append(refs, l.Body)
		}
		if l.Capture != nil {
			refs = append(refs, l.Capture)
		}
		return refs
	default:
		return nil
	}
}

// WeakRefs returns the object's non-owning references: currently just a
// Lambda's Self binding. The heap never counts these edges, and its
// mark phase does not grey their targets, so they never keep a target
// alive on their own.
func (o *Object) WeakRefs() []*Object {
	if o.Kind == KindLambda && o.Lambda != nil && o.Lambda.Self != nil {
		return []*Object{o.Lambda.Self}
	}
	return nil
}
