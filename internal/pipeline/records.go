package pipeline

import (
	"github.com/couchcryptid/paleotemp-etl/internal/dataset"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/geo"
	"github.com/couchcryptid/paleotemp-etl/internal/interp"
)

// Catalog resolves reference datasets by name. *dataset.Store implements it.
type Catalog interface {
	Series(record, x, y string) (interp.Series, error)
	Field(name string) (geo.Dataset, error)
	Ensemble(name string) (dataset.Ensemble, error)
}

const (
	refTool     = "Gaskell, D.E., and Hull, P.M. (2022), A new online tool for δ18O-temperature conversions, doi:10.5194/cp-2022-74"
	refMiller20 = "Miller, K.G., Browning, J.V., Schmelz, W.J., Kopp, R.E., Mountain, G.S., and Wright, J.D. (2020), doi:10.1126/sciadv.aaz1346"
	refCramer11 = "Cramer, B.S., Miller, K.G., Barrett, P.J., and Wright, J.D. (2011), doi:10.1029/2011JC007255"
	refModestou = "Modestou, S.E., Leutert, T.J., Fernandez, A., Lear, C.H., and Meckler, A.N. (2020), doi:10.1029/2020PA003927"
	refRohling  = "Rohling, E.J., Yu, J., Heslop, D., Foster, G.L., Opdyke, B., and Roberts, A.P. (2021), doi:10.1126/sciadv.abf5326"
	refCENOGRID = "Westerhold, T., et al. (2020), doi:10.1126/science.aba6853"
	refLR04     = "Lisiecki, L.E., and Raymo, M.E. (2005), doi:10.1029/2004PA001071"
	refHenkes   = "Henkes, G.A., Passey, B.H., Grossman, E.L., Shenton, B.J., Yancey, T.E., and Pérez-Huerta, A. (2018), doi:10.1016/j.epsl.2018.02.001"
	refVeizer   = "Veizer, J., and Prokoph, A. (2015), doi:10.1016/j.earscirev.2015.03.008"
	refTyrrell  = "Tyrrell, T., and Zeebe, R.E. (2004), doi:10.1016/j.gca.2004.02.018"
	refZeebe    = "Zeebe, R.E., and Tyrrell, T. (2019), doi:10.1016/j.gca.2019.02.041"
	refMuller16 = "Müller, R.D., et al. (2016), doi:10.1146/annurev-earth-060115-012211"
	refMuller18 = "Müller, R.D., Cannon, J., Qin, X., Watson, R.J., Gurnis, M., Williams, S., Pfaffelmoser, T., Seton, M., Russell, S.H.J., and Zahirovic, S. (2018), doi:10.1029/2018GC007584"
	refLeGrande = "LeGrande, A.N., and Schmidt, G.A. (2006), doi:10.1029/2006GL026011"
	refTierney  = "Tierney, J.E., Zhu, J., King, J., Malevich, S.B., Hakim, G.J., and Poulsen, C.J. (2020), doi:10.1038/s41586-020-2617-x"
	refZachos94 = "Zachos, J.C., Stott, L.D., and Lohmann, K.C. (1994), doi:10.1029/93PA03266"
	refHollis19 = "Hollis, C.J., et al. (2019), doi:10.5194/gmd-12-3149-2019"
	refGaskell  = "Gaskell, D.E., Huber, M., O'Brien, C.L., Inglis, G.N., Acosta, R.P., Poulsen, C.J., and Hull, P.M. (2022), doi:10.1073/pnas.2111332119"
	refZhu20    = "Zhu, J., Poulsen, C.J., and Otto-Bliesner, B.L. (2020), doi:10.1038/s41558-020-0764-6"
)

// timescales maps the accepted age model keys to their citation.
var timescales = map[string]string{
	"GTS2004": "Gradstein, F.M., Ogg, J.G., and Smith, A.G. (Eds.) (2005), A Geologic Time Scale 2004, doi:10.1017/CBO9780511536045",
	"GTS2012": "Gradstein, F.M., Ogg, J.G., Schmitz, M.D., and Ogg, G.M. (Eds.) (2012), The Geologic Time Scale, doi:10.1016/C2011-1-08249-8",
	"GTS2016": "Ogg, J.G., Ogg, G.M., and Gradstein, F.M. (2016), A Concise Geologic Time Scale, doi:10.1016/C2009-0-64442-1",
	"GTS2020": "Gradstein, F.M., Ogg, J.G., Schmitz, M.D., and Ogg, G.M. (2020), Geologic Time Scale 2020, Elsevier",
}

// DefaultTimescale is used when a run selects an age-indexed record without
// naming a timescale.
const DefaultTimescale = "GTS2020"

// record is one column of a reference curve indexed by age.
type record struct {
	curve string
	// age is the x column, suffixed with "_<timescale>" when timescaled.
	age        string
	timescaled bool
	column     string
	digits     int
	ageLow     float64
	ageHigh    float64
	refs       []string
}

func (r record) x(timescale string) string {
	if r.timescaled {
		return r.age + "_" + timescale
	}
	return r.age
}

func (r record) series(c Catalog, timescale string) (interp.Series, error) {
	return c.Series(r.curve, r.x(timescale), r.column)
}

// declare adds the record's age limit, digits and citations to out.
func (r record) declare(out *Output, col string) {
	out.narrow(domain.Age, r.ageLow, r.ageHigh)
	out.digits(col, r.digits)
	out.cite(r.refs...)
}

func ts(curve, age, column string, digits int, low, high float64, refs ...string) record {
	return record{curve: curve, age: age, timescaled: true, column: column, digits: digits, ageLow: low, ageHigh: high, refs: refs}
}

var co3Records = map[string]record{
	"tyrrellzeebe": {curve: "tyrrellzeebe", age: "age", column: "CO3", digits: 2, ageHigh: 100, refs: []string{refTyrrell}},
	"zeebetyrrell": {curve: "zeebetyrrell", age: "age", column: "CO3", digits: 2, ageHigh: 100, refs: []string{refZeebe}},
}

var iceRecords = map[string]record{
	"miller":   ts("miller", "age", "d18O_sw", 2, 0, 66, refMiller20),
	"cramer1":  ts("cramer1", "Age", "d18Osw", 2, 0, 108, refCramer11),
	"cramer2":  ts("cramer2", "Age", "d18Osw", 3, 0, 62.88, refCramer11),
	"cramer3":  ts("cramer3", "Age", "d18Osw", 3, 0, 62.88, refCramer11),
	"cramer1s": ts("cramer1", "Age", "d18Osw (long)", 2, 0, 108, refCramer11),
	"cramer2s": ts("cramer2", "Age", "d18Osw (long)", 3, 0, 62.88, refCramer11),
	"cramer3s": ts("cramer3", "Age", "d18Osw (long)", 3, 0, 62.88, refCramer11),
	"modestou": ts("modestou", "age", "d18O_sw", 2, 11.84, 16.42, refModestou),
	"rohling1": ts("rohling1", "age", "d18Osw", 3, 0, 40.195, refRohling, refCENOGRID),
	"rohling2": ts("rohling2", "age", "d18Osw", 3, 0, 5.3, refRohling, refLR04),
}

// benthicRecords excludes miller, which is converted from two columns.
var benthicRecords = map[string]record{
	"cramer1":  ts("cramer1", "Age", "Temperature", 2, 0, 108, refCramer11),
	"cramer2":  ts("cramer2", "Age", "Temperature", 2, 0, 62.88, refCramer11),
	"cramer3":  ts("cramer3", "Age", "Temperature", 2, 0, 62.88, refCramer11),
	"cramer1s": ts("cramer1", "Age", "Temperature (long)", 2, 0, 108, refCramer11),
	"cramer2s": ts("cramer2", "Age", "Temperature (long)", 2, 0, 62.88, refCramer11),
	"cramer3s": ts("cramer3", "Age", "Temperature (long)", 2, 0, 62.88, refCramer11),
	"rohling1": ts("rohling1", "age", "temp_benthic", 3, 0, 40.195, refRohling, refCENOGRID),
	"rohling2": ts("rohling2", "age", "temp_benthic", 3, 0, 5.3, refRohling, refLR04),
}

// field is a gridded seawater δ¹⁸O product used for patch means.
type field struct {
	offset float64
	ref    string
}

var fields = map[string]field{
	"legrandemixed": {ref: refLeGrande},
	"legrande0":     {ref: refLeGrande},
	"legrande50":    {ref: refLeGrande},
	"legrande100":   {ref: refLeGrande},
	"legrande200":   {ref: refLeGrande},
	"legrande500":   {ref: refLeGrande},
	"legrande1000":  {ref: refLeGrande},
	"legrande1500":  {ref: refLeGrande},
	"legrande2000":  {ref: refLeGrande},
	"legrande3000":  {ref: refLeGrande},
	"legrande4000":  {ref: refLeGrande},
	"legrande5000":  {ref: refLeGrande},
	"tierney_hol":   {ref: refTierney},
	// LGM field re-centred on the glacial mean-ocean enrichment.
	"tierney_lgm": {offset: -1.05, ref: refTierney},
}

var ensembles = map[string][]string{
	"gaskell": {refGaskell},
	"zhu":     {refGaskell, refZhu20},
}
