package pdb

// aminoThreeToOne maps three-letter residue codes to their single-letter
// representation: the 20 canonical amino acids plus selenocysteine and
// pyrrolysine. Codes outside this table map to 'X'.
var aminoThreeToOne = map[string]byte{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
}

func abbrevToOne(residue string) byte {
	if one, ok := aminoThreeToOne[residue]; ok {
		return one
	}
	return 'X'
}
