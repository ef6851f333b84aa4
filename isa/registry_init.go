package isa

// Default builds the registry of every variant spec.md §4.D requires:
// RV64I register-immediate, register-register, upper-immediate, loads,
// stores, control transfer, environment, word variants, and the RV64M
// entries this kernel ships. Extension packs append further descriptors
// to the same registry after this call.
//
// Registration order matters: it is the match-precedence order per
// spec.md §3. ebreak is registered last among the 32-bit-exact matches
// since it is never ambiguous with anything else in this table, but the
// kernel's fetch/dispatch loop never actually reaches the registry for
// it — spec.md §4.E intercepts the exact encoding before Lookup runs.
func Default() *Registry {
	r := NewRegistry()
	r.Append(
		descAddi, descXori, descOri, descAndi,
		descSlli, descSrli, descSrai,
		descAdd, descSub, descSll, descSrl, descSra,
		descLui,
		descLw, descLd,
		descSw, descSd,
		descJal, descJalr,
		descBeq, descBne, descBlt, descBge, descBltu, descBgeu,
		descEbreak,
		descAddiw, descAddw,
		descMul,
	)
	return r
}
