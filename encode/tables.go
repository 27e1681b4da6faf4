package encode

// These tag tables are the direct translation of the reference
// implementation's mnemonic -> tag maps: which operand-shape encoder a
// mnemonic uses (3-operand ALU, 4-operand ALU, 2- or 3-operand FPU, one of
// the four misc shapes, or debug) and the tag value packed into its
// instruction word.

var alu3Table = map[string]uint8{
	"fcmpne": 28,
	"fcmpeq": 29,
	"fcmplt": 30,
	"fcmple": 31,
}

var alu4Table = map[string]uint8{
	"add":   0,
	"sub":   1,
	"shl":   2,
	"shr":   3,
	"sar":   4,
	"and":   5,
	"or":    6,
	"xor":   7,
	"cmpne": 24,
	"cmpeq": 25,
	"cmplt": 26,
	"cmple": 27,
}

var fpu2Table = map[string]uint8{
	"finv":  4,
	"fsqrt": 5,
	"ftoi":  6,
	"itof":  7,
	"floor": 8,
}

var fpu3Table = map[string]uint8{
	"fadd": 0,
	"fsub": 1,
	"fmul": 2,
	"fdiv": 3,
}

var signTable = map[string]uint8{
	"":        0,
	"neg":     1,
	"abs":     2,
	"abs.neg": 3,
}

var misc0Table = map[string]uint8{
	"sysenter": 4,
	"sysexit":  5,
}

var misc1Table = map[string]uint8{
	"jr": 12,
}

var misc2Table = map[string]uint8{
	"ldl": 2,
	"jl":  11,
}

var misc3Table = map[string]uint8{
	"ldh": 3,
	"st":  6,
	"stb": 7,
	"ld":  8,
	"ldb": 9,
	"bne": 13,
	"beq": 15,
}

var debugTable = map[string]uint8{
	"break":  1,
	"penv":   2,
	"ptrace": 3,
}
