package context

import "github.com/quillrt/quill/internal/value"

// BindArguments assembles a call's argument tuple from the callee's
// declared parameter tuple (lambda.Lambda.Params, a Tuple of Named
// with default values) and the call-site's argument tuple (a Tuple
// mixing plain positional entries and Named keyword entries), per the
// four-step binding algorithm:
//
//  1. Each named call argument whose key matches a parameter replaces
//     that parameter's value.
//  2. Each named call argument with no match is appended as a new
//     Named entry.
//  3. Positional arguments fill unmatched parameter slots in
//     declaration order; overflow positionals are appended.
//  4. A dynamic lambda's own parameter tuple is mutated in place and
//     becomes the assembled tuple (so a later keyof/valueof reflects
//     the last call); a static lambda binds into a fresh clone and its
//     declaration-time parameters are left untouched.
//
// The returned tuple becomes the new function frame's "arguments"
// binding (and, for a dynamic lambda, its Params).
func BindArguments(lambda, call *value.Object) *value.Object {
	l := lambda.Lambda
	params := l.Params
	if params == nil {
		params = value.NewTuple(nil)
	}

	var target []*value.Object
	if l.Static {
		target = value.DeepCopy(params).Tuple
	} else {
		target = params.Tuple
	}

	matched := make([]bool, len(target))
	var positionals, namedExtra []*value.Object

	if call != nil {
		for _, arg := range call.Tuple {
			if arg.Kind != value.KindNamed {
				positionals = append(positionals, arg)
				continue
			}
			idx := findParam(target, arg.KV[0])
			if idx >= 0 {
				target[idx].KV[1] = arg.KV[1]
				matched[idx] = true
			} else {
				namedExtra = append(namedExtra, arg)
			}
		}
	}

	pi := 0
	for i, p := range target {
		if matched[i] || p.Kind != value.KindNamed {
			continue
		}
		if pi >= len(positionals) {
			break
		}
		p.KV[1] = positionals[pi]
		pi++
		matched[i] = true
	}
	overflow := positionals[pi:]

	merged := make([]*value.Object, 0, len(target)+len(namedExtra)+len(overflow))
	merged = append(merged, target...)
	merged = append(merged, namedExtra...)
	merged = append(merged, overflow...)
	assembled := value.NewTuple(merged)

	if !l.Static {
		l.Params = assembled
	}
	return assembled
}

func findParam(target []*value.Object, key *value.Object) int {
	for i, p := range target {
		if p.Kind == value.KindNamed && value.Equal(p.KV[0], key) {
			return i
		}
	}
	return -1
}
