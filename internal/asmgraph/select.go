package asmgraph

import "github.com/pendragon-project/pendragon/internal/cpu"

// wordOps maps a word-arithmetic mnemonic to its immediate-word and register opcode forms; both
// operate implicitly on AX, per section 6.1's opcode table.
var wordOps = map[string]struct{ Imm16, Reg cpu.Opcode }{
	"ADD": {cpu.ADD_IMM16, cpu.ADD_REG},
	"SUB": {cpu.SUB_IMM16, cpu.SUB_REG},
	"MUL": {cpu.MUL_IMM16, cpu.MUL_REG},
	"DIV": {cpu.DIV_IMM16, cpu.DIV_REG},
	"REM": {cpu.REM_IMM16, cpu.REM_REG},
	"AND": {cpu.AND_IMM16, cpu.AND_REG},
	"OR":  {cpu.OR_IMM16, cpu.OR_REG},
	"XOR": {cpu.XOR_IMM16, cpu.XOR_REG},
	"NOT": {cpu.NOT_IMM16, cpu.NOT_REG},
	"SHL": {cpu.SHL_IMM16, cpu.SHL_REG},
	"SHR": {cpu.SHR_IMM16, cpu.SHR_REG},
	"ROL": {cpu.ROL_IMM16, cpu.ROL_REG},
	"ROR": {cpu.ROR_IMM16, cpu.ROR_REG},
}

// byteImmOps maps a byte-immediate mnemonic (the "B" form) to its opcode; these, too, operate
// implicitly on AX.
var byteImmOps = map[string]cpu.Opcode{
	"ADB": cpu.ADB_IMM8,
	"SBB": cpu.SBB_IMM8,
	"MLB": cpu.MLB_IMM8,
	"DVB": cpu.DVB_IMM8,
	"RMB": cpu.RMB_IMM8,
	"ANB": cpu.ANB_IMM8,
	"ORB": cpu.ORB_IMM8,
	"XOB": cpu.XOB_IMM8,
	"NTB": cpu.NTB_IMM8,
	"SLB": cpu.SLB_IMM8,
	"SRB": cpu.SRB_IMM8,
	"RLB": cpu.RLB_IMM8,
	"RRB": cpu.RRB_IMM8,
}

// highRegOps and lowRegOps map the "H"/"L" mnemonics to their opcodes: each takes one register
// operand and combines that register's high (or low) byte into AX's low byte.
var highRegOps = map[string]cpu.Opcode{
	"ADH": cpu.ADH_REG,
	"SBH": cpu.SBH_REG,
	"MLH": cpu.MLH_REG,
	"DVH": cpu.DVH_REG,
	"RMH": cpu.RMH_REG,
	"ANH": cpu.ANH_REG,
	"ORH": cpu.ORH_REG,
	"XOH": cpu.XOH_REG,
	"NTH": cpu.NTH_REG,
	"SLH": cpu.SLH_REG,
	"SRH": cpu.SRH_REG,
	"RLH": cpu.RLH_REG,
	"RRH": cpu.RRH_REG,
}

var lowRegOps = map[string]cpu.Opcode{
	"ADL": cpu.ADL_REG,
	"SBL": cpu.SBL_REG,
	"MLL": cpu.MLL_REG,
	"DVL": cpu.DVL_REG,
	"RML": cpu.RML_REG,
	"ANL": cpu.ANL_REG,
	"ORL": cpu.ORL_REG,
	"XOL": cpu.XOL_REG,
	"NTL": cpu.NTL_REG,
	"SLL": cpu.SLL_REG,
	"SRL": cpu.SRL_REG,
	"RLL": cpu.RLL_REG,
	"RRL": cpu.RRL_REG,
}

var jumpOps = map[string]cpu.Opcode{
	"JMP":  cpu.JMP,
	"JPZ":  cpu.JPZ,
	"JPNZ": cpu.JPNZ,
	"JPC":  cpu.JPC,
	"JPNC": cpu.JPNC,
	"JPS":  cpu.JPS,
	"JPNS": cpu.JPNS,
	"JPO":  cpu.JPO,
	"JPNO": cpu.JPNO,
}

var pushOps = map[string]cpu.Opcode{
	"PUSH":  cpu.PUSH,
	"PUSHH": cpu.PUSHH,
	"PUSHL": cpu.PUSHL,
}

var popOps = map[string]cpu.Opcode{
	"POP":  cpu.POP,
	"POPH": cpu.POPH,
	"POPL": cpu.POPL,
}

var peekOps = map[string]cpu.Opcode{
	"PEEKB":  cpu.PEEKB,
	"PEEKW":  cpu.PEEKW,
	"PEEKFB": cpu.PEEKFB,
	"PEEKFW": cpu.PEEKFW,
}

// directAddrOps maps LDA/LDAB/LDAH/LDAL's direct-address shape to its opcode.
var directAddrOps = map[string]cpu.Opcode{
	"LDA":  cpu.LDA,
	"LDAB": cpu.LDAB,
	"LDAH": cpu.LDAH,
	"LDAL": cpu.LDAL,
}

// indirectAddrOps maps the same mnemonics' register-indirect shape, "reg, (reg)".
var indirectAddrOps = map[string]cpu.Opcode{
	"LDA":  cpu.LDA_IND,
	"LDAH": cpu.LDAH_IND,
	"LDAL": cpu.LDAL_IND,
}

var storeOps = map[string]cpu.Opcode{
	"STA":  cpu.STA,
	"STAH": cpu.STAH,
	"STAL": cpu.STAL,
}
