package value

// AttachAlias returns a shallow clone of v with a prepended to its
// alias list: aliasof(AttachAlias(a, v)) == (a,) + aliasof(v). The
// clone shares v's composite children (copies, it does not deep-copy)
// and, per spec §3's Lambda invariant, drops Self if v is a lambda —
// attaching an alias is itself a "shallow clone... afterward", and
// bind-time Self is not part of what a clone carries forward.
func AttachAlias(a string, v *Object) *Object {
	clone := shallowCopy(v)
	if clone.Kind == KindLambda && clone.Lambda != nil {
		clone.Lambda.Self = nil // an alias-attach clone discards bind-time self
	}
	aliases := make([]string, 0, len(v.aliases)+1)
	aliases = append(aliases, a)
	aliases = append(aliases, v.aliases...)
	clone.aliases = aliases
	return clone
}

// WipeAlias returns a shallow clone of v with an empty alias list. It
// never mutates v.
func WipeAlias(v *Object) *Object {
	clone := shallowCopy(v)
	if clone.Kind == KindLambda && clone.Lambda != nil {
		clone.Lambda.Self = nil
	}
	clone.aliases = nil
	return clone
}

// shallowCopy copies the Kind-specific payload, sharing (not copying)
// any owned *Object children, and resets GC bookkeeping — the clone is
// a fresh, as-yet-unowned allocation. Self is preserved here; callers
// that need the alias-clone's discard-self behavior clear it themselves.
func shallowCopy(v *Object) *Object {
	c := &Object{Kind: v.Kind, aliases: v.aliases}
	c.Bool, c.Int, c.Float = v.Bool, v.Int, v.Float
	c.Str = v.Str
	if v.Bytes != nil {
		c.Bytes = append([]byte(nil), v.Bytes...)
	}
	c.RangeLo, c.RangeHi = v.RangeLo, v.RangeHi
	c.KV = v.KV
	if v.Tuple != nil {
		c.Tuple = append([]*Object(nil), v.Tuple...)
	}
	c.Filter = v.Filter
	c.Wrapped = v.Wrapped
	c.Instr = v.Instr
	c.Native = v.Native
	if v.Lambda != nil {
		l := *v.Lambda
		c.Lambda = &l
	}
	return c
}
