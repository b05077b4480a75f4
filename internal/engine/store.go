package engine

// Census columns, in CensusStore.Counts order.
const (
	colPoblacion = iota
	colViviendas
	colSinEscolaridad
	colPrimariaIn
	colPrimariaCo
	colSecundariaIn
	colSecundariaCo
	colPosBasica
	colAgeBands // first age column; band b is male at colAgeBands+2b, female at +1
)

// AgeBands are the pyramid rows, youngest first.
var AgeBands = []string{"0-2", "3-5", "6-11", "12-14", "15-17", "18-24", "60+"}

var ageColumns = []string{
	"P_0A2_M", "P_0A2_F",
	"P_3A5_M", "P_3A5_F",
	"P_6A11_M", "P_6A11_F",
	"P_12A14_M", "P_12A14_F",
	"P_15A17_M", "P_15A17_F",
	"P_18A24_M", "P_18A24_F",
	"P_60YMAS_M", "P_60YMAS_F",
}

const regionColumn = "NOM_ENT"

// censusColumns maps each Counts index to its CSV header.
var censusColumns = append([]string{
	"POBTOT", "VIVTOT",
	"P15YM_SE",
	"P15PRI_IN", "P15PRI_CO",
	"P15SEC_IN", "P15SEC_CO",
	"P18YM_PB",
}, ageColumns...)

// CensusStore holds census blocks in Struct-of-Arrays format.
type CensusStore struct {
	// Dictionary Encoded region IDs (0..N), one per block
	RegionIDs  []int32
	RegionDict []string

	// Counts[col][row]; suppressed cells are stored as 0
	Counts [][]int64
}

func (cs *CensusStore) Rows() int { return len(cs.RegionIDs) }

// CensusColumnCount is the number of count columns a CensusStore carries.
func CensusColumnCount() int { return len(censusColumns) }

// BusinessStore holds the business directory, one row per establishment.
type BusinessStore struct {
	RegionIDs   []int32
	ActivityIDs []int32

	RegionDict   []string
	ActivityDict []string
}

func (bs *BusinessStore) Rows() int { return len(bs.RegionIDs) }
