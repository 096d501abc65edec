package calibration

import (
	"math"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

const (
	refBemis98      = "Bemis, B.E., Spero, H.J., Bijma, J., and Lea, D.W. (1998), doi:10.1029/98PA00070"
	refHut87        = "Hut, G. (1987), Consultants' group meeting on stable isotope reference samples for geochemical and hydrological investigations, IAEA"
	refBrand14      = "Brand, W.A., Coplen, T.B., Vogl, J., Rosner, M., and Prohaska, T. (2014), doi:10.1515/pac-2013-1023"
	refMulitza03    = "Mulitza, S., Boltovskoy, D., Donner, B., Meggers, H., Paul, A., and Wefer, G. (2003), doi:10.1016/S0031-0182(03)00633-3"
	refFarmer07     = "Farmer, E.C., Kaplan, A., de Menocal, P.B., and Lynch-Stieglitz, J. (2007), doi:10.1029/2006PA001361"
	refMarchitto14  = "Marchitto, T.M., Curry, W.B., Lynch-Stieglitz, J., Bryan, S.P., Cobb, K.M., and Lund, D.C. (2014), doi:10.1016/j.gca.2013.12.034"
	refBouvier85    = "Bouvier-Soumagnac, Y., and Duplessy, J.-C. (1985), doi:10.2113/gsjfr.15.4.302"
	refMalevich19   = "Malevich, S.B., Vetter, L., and Tierney, J.E. (2019), doi:10.1029/2019PA003576"
	refGrossmanKu86 = "Grossman, E.L., and Ku, T.-L. (1986), doi:10.1016/0168-9622(86)90057-6"
	refReynaud99    = "Reynaud-Vaganay, S., Gattuso, J.-P., Cuif, J.-P., Jaubert, J., and Juillet-Leclerc, A. (1999), doi:10.3354/meps180121"
)

// bayfox builds a linearised BAYFOX posterior: median plus 2.5 and 97.5
// percentile bands, each intercept − slope·(δ¹⁸Oc − δ¹⁸Osw).
func bayfox(key, taxon string, lo, mid, hi [2]float64) Calibration {
	return Calibration{
		Key:        key,
		Name:       "BAYFOX annual core-top, " + taxon,
		References: []string{refMalevich19},
		Equation:   Linear(mid[0], mid[1], 0),
		Range:      domain.NewRange(0, 29.5),
		Bands: []Band{
			{Column: domain.ColTempLow, Equation: Linear(lo[0], lo[1], 0)},
			{Column: domain.ColTempHigh, Equation: Linear(hi[0], hi[1], 0)},
		},
	}
}

func fractionation(key, name, ref string, a, b, lo, hi float64) Calibration {
	return Calibration{
		Key: key, Name: name, References: []string{refBrand14, ref},
		Equation: Fractionation(a, b), Range: domain.NewRange(lo, hi),
	}
}

func linear(key, name string, refs []string, a, b, offset, lo, hi float64) Calibration {
	return Calibration{Key: key, Name: name, References: refs, Equation: Linear(a, b, offset), Range: domain.NewRange(lo, hi)}
}

func quadratic(key, name string, refs []string, a, b, c, offset, lo, hi float64) Calibration {
	return Calibration{Key: key, Name: name, References: refs, Equation: Quadratic(a, b, c, offset), Range: domain.NewRange(lo, hi)}
}

// Defaults returns every published calibration the service offers.
func Defaults() []Calibration {
	hutMulitza := []string{refHut87, refMulitza03}
	hutFarmer := []string{refHut87, refFarmer07}
	bemisBouvier := []string{refBemis98, refBouvier85}

	return []Calibration{
		quadratic("mccrea", "McCrea (1950) inorganic calcite", []string{refBemis98, "McCrea, J.M. (1950), doi:10.1063/1.1747785"}, 16.0, 5.17, 0.09, 0.20, 14, 57),
		quadratic("epstein", "Epstein et al. (1953) mollusc", []string{"Grossman, E.L. (2012), doi:10.1016/B978-0-444-59425-9.00010-X", "Epstein, S., Buchsbaum, R., Lowenstam, H.A., and Urey, H.C. (1953), Geological Society of America Bulletin, v. 64, p. 1315-1326"}, 16.5, 4.30, 0.14, 0.27, 7, 30),
		quadratic("oneil", "O'Neil et al. (1969) inorganic calcite", []string{refBemis98, "O'Neil, J.R., Clayton, R.N., and Mayeda, T.K. (1969), doi:10.1063/1.1671982"}, 16.9, 4.38, 0.10, 0.20, 0, 500),
		linear("shackleton", "Shackleton (1974) Uvigerina", []string{refBemis98, "Shackleton, N.J. (1974), Colloques Internationaux du C.N.R.S., v. 219, p. 203-209"}, 16.9, 4.0, 0.20, 0.8, 7),
		quadratic("erezluz", "Erez and Luz (1983) Trilobatus sacculifer", []string{refBemis98, "Erez, J., and Luz, B. (1983), doi:10.1016/0016-7037(83)90232-6"}, 17.0, 4.52, 0.03, 0.22, 14, 30),
		linear("lynch", "Lynch-Stieglitz et al. (1999) Cibicidoides/Planulina", []string{refHut87, "Lynch-Stieglitz, J., Curry, W.B., and Slowey, N. (1999), doi:10.1029/1999PA900001"}, 16.1, 4.76, 0.27, 4.1, 25.6),
		{
			Key: "marchitto_cib", Name: "Marchitto et al. (2014) Cibicidoides and Planulina",
			References: []string{refMarchitto14},
			Equation: func(c, g, s float64) float64 {
				return (0.245 - math.Sqrt(0.045461+0.0044*(c-(g+s)))) / 0.0022
			},
			Range: domain.NewRange(-0.6, 25.6),
		},
		{
			Key: "marchitto_per", Name: "Marchitto et al. (2014) Uvigerina peregrina",
			References: []string{refHut87, refMarchitto14},
			Equation: func(c, g, s float64) float64 {
				return -5.0 / 4 * (math.Sqrt(800*(c-(g+s)+0.27)+11401) - 121)
			},
			Range: domain.NewRange(1.5, 16.9),
		},
		{
			Key: "marchitto_ele", Name: "Marchitto et al. (2014) Hoeglundina elegans",
			References: []string{refHut87, refMarchitto14},
			Equation: func(c, g, s float64) float64 {
				return 405 - 5*math.Sqrt(400*(c-(g+s)+0.27)+17779)/math.Sqrt(3)
			},
			Range: domain.NewRange(2.6, 25.6),
		},
		linear("bouvier_orb1", "Bouvier-Soumagnac and Duplessy (1985) Orbulina universa, Indian Ocean", bemisBouvier, 16.4, 4.67, 0.20, 20, 25.2),
		linear("bouvier_orb2", "Bouvier-Soumagnac and Duplessy (1985) Orbulina universa, Caribbean", bemisBouvier, 15.4, 4.81, 0.20, 20, 29.5),
		linear("bouvier_men", "Bouvier-Soumagnac and Duplessy (1985) Globorotalia menardii", bemisBouvier, 14.6, 5.03, 0.20, 24.6, 29.2),
		linear("bouvier_dut", "Bouvier-Soumagnac and Duplessy (1985) Neogloboquadrina dutertrei", bemisBouvier, 10.5, 6.58, 0.20, 22.6, 30.6),
		quadratic("kimoneil", "Kim and O'Neil (1997) inorganic calcite", []string{refHut87, "Kim, S.-T., and O'Neil, J.R. (1997), doi:10.1016/S0016-7037(97)00169-5"}, 16.1, 4.64, 0.09, 0.27, 0, 40),
		quadratic("mulitza_pool", "Mulitza et al. (2004) pooled planktonic", []string{refHut87, "Mulitza, S., Donner, B., Fischer, G., Paul, A., Patzold, J., Ruhlemann, C., and Segl, M. (2004), doi:10.1007/978-3-642-18917-3_7"}, 14.32, 4.28, 0.07, 0.27, -2, 31),
		linear("mulitza_sac", "Mulitza et al. (2003) Trilobatus sacculifer", hutMulitza, 14.91, 4.35, 0.27, 16, 31),
		linear("mulitza_rub", "Mulitza et al. (2003) Globigerinoides ruber", hutMulitza, 14.20, 4.44, 0.27, 16, 31),
		linear("mulitza_bul", "Mulitza et al. (2003) Globigerina bulloides", hutMulitza, 14.62, 4.70, 0.27, 1, 25),
		linear("mulitza_pac", "Mulitza et al. (2003) Neogloboquadrina pachyderma", hutMulitza, 12.69, 3.55, 0.27, -2, 13),
		linear("bemis_mean", "Bemis et al. (1998) Orbulina universa, mean light", []string{refBemis98}, 15.7, 4.80, 0.27, 15, 25),
		linear("bemis_ll", "Bemis et al. (1998) Orbulina universa, low light", []string{refBemis98}, 16.5, 4.80, 0.27, 15, 25),
		linear("bemis_hl", "Bemis et al. (1998) Orbulina universa, high light", []string{refBemis98}, 14.9, 4.80, 0.27, 15, 25),
		linear("bemis_bul11", "Bemis et al. (1998) Globigerina bulloides, 11 chambers", []string{refBemis98}, 12.6, 5.07, 0.27, 15, 24),
		linear("bemis_bul12", "Bemis et al. (1998) Globigerina bulloides, 12 chambers", []string{refBemis98}, 13.2, 4.89, 0.27, 15, 24),
		linear("bemis_bul13", "Bemis et al. (1998) Globigerina bulloides, 13 chambers", []string{refBemis98}, 13.6, 4.77, 0.27, 15, 24),
		linear("juillet", "Juillet-Leclerc and Schmidt (2001) coccoliths", []string{refHut87, "Juillet-Leclerc, A., and Schmidt, G. (2001), doi:10.1029/2000GL012538"}, 9.25, 4.00, 0.27, 20, 30),
		linear("duplessy", "Duplessy et al. (2002) benthic", []string{refHut87, "Duplessy, J.-C., Labeyrie, L., and Waelbroeck, C. (2002), doi:10.1016/S0277-3791(01)00107-X"}, 12.75, 3.60, 0.27, -2, 13),
		linear("farmer_rubw", "Farmer et al. (2007) Globigerinoides ruber (white)", hutFarmer, 15.4, 4.78, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_rubp", "Farmer et al. (2007) Globigerinoides ruber (pink)", hutFarmer, 14.7, 4.86, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_sac", "Farmer et al. (2007) Trilobatus sacculifer", hutFarmer, 16.2, 4.94, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_orb", "Farmer et al. (2007) Orbulina universa", hutFarmer, 16.5, 5.11, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_obl", "Farmer et al. (2007) Pulleniatina obliquiloculata", hutFarmer, 16.8, 5.22, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_men", "Farmer et al. (2007) Globorotalia menardii", hutFarmer, 16.6, 5.20, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_dut", "Farmer et al. (2007) Neogloboquadrina dutertrei", hutFarmer, 14.6, 5.09, 0.27, math.Inf(-1), math.Inf(1)),
		linear("farmer_tum", "Farmer et al. (2007) Globorotalia tumida", hutFarmer, 13.1, 4.95, 0.27, math.Inf(-1), math.Inf(1)),
		bayfox("bayfox_pooled", "pooled species", [2]float64{11.8790, 4.0562}, [2]float64{16.3524, 4.0556}, [2]float64{20.8243, 4.0549}),
		bayfox("bayfox_ruber", "Globigerinoides ruber", [2]float64{8.6827, 5.3030}, [2]float64{13.0681, 5.2605}, [2]float64{17.4007, 5.2366}),
		bayfox("bayfox_sac", "Trilobatus sacculifer", [2]float64{6.8415, 6.4534}, [2]float64{12.4053, 6.3458}, [2]float64{17.8395, 6.2936}),
		bayfox("bayfox_bul", "Globigerina bulloides", [2]float64{11.6699, 4.1260}, [2]float64{16.6159, 4.1291}, [2]float64{21.5757, 4.1348}),
		bayfox("bayfox_inc", "Neogloboquadrina incompta", [2]float64{11.5827, 5.7159}, [2]float64{17.9531, 5.7401}, [2]float64{24.5124, 5.8647}),
		bayfox("bayfox_pac", "Neogloboquadrina pachyderma", [2]float64{14.8492, 4.9474}, [2]float64{19.8109, 4.9853}, [2]float64{24.8827, 5.0491}),
		fractionation("willmes", "Willmes et al. (2019) fish otoliths", "Willmes, M. et al. (2019), doi:10.1002/rcm.8464", 18.39, 34.56, 16.4, 20.5),
		fractionation("thorrold", "Thorrold et al. (1997) fish otoliths", "Thorrold, S.R., Campana, S.E., Jones, C.M., and Swart, P.K. (1997), doi:10.1016/S0016-7037(97)00141-5", 18.57, 32.54, 18.2, 25),
		fractionation("patterson", "Patterson et al. (1993) freshwater fish otoliths", "Patterson, W.P., Smith, G.R., and Lohmann, K.C. (1993), doi:10.1029/GM078p0191", 18.56, 33.49, 3.2, 30.3),
		fractionation("godiksen", "Godiksen et al. (2010) Arctic charr otoliths", "Godiksen, J.A., Svenning, M.-A., Dempson, J.B., Marttila, M., Storm-Suke, A., and Power, M. (2010), doi:10.1007/s10750-009-0056-7", 20.43, 41.14, 2, 14),
		fractionation("geffen", "Geffen (2012) plaice otoliths", "Geffen, A.J. (2012), doi:10.1007/s10641-012-0033-2", 15.99, 24.25, 11, 17),
		fractionation("hoie", "Hoie et al. (2004) cod otoliths", "Hoie, H., Otterlei, E., and Folkvord, A. (2004), doi:10.1016/j.icesjms.2003.11.006", 16.75, 27.09, 6, 20),
		fractionation("stormsuke", "Storm-Suke et al. (2007) Arctic charr otoliths", "Storm-Suke, A., Dempson, J.B., Reist, J.D., and Power, M. (2007), doi:10.1002/rcm.3320", 20.69, 41.69, 2.3, 11.8),
		linear("grossman_mol", "Grossman and Ku (1986) molluscs", []string{refGrossmanKu86}, 21.8, 4.69, 0.20, 6, 22),
		linear("grossman_ele", "Grossman and Ku (1986) Hoeglundina elegans", []string{refGrossmanKu86}, 20.6, 4.38, 0.20, 2.5, 20),
		fractionation("white", "White et al. (1999) cave calcite", "White, R.M.P., Dennis, P.F., and Atkinson, T.C. (1999), Rapid Communications in Mass Spectrometry, v. 13, p. 1242-1247", 16.74, 26.39, 8, 24),
		fractionation("bohm", "Bohm et al. (2000) sclerosponge aragonite", "Bohm, F., Joachimski, M.M., Dullo, W.-C., Eisenhauer, A., Lehnert, H., Reitner, J., and Worheide, G. (2000), doi:10.1016/S0016-7037(99)00408-1", 18.45, 32.54, 3, 28),
		fractionation("tremaine", "Tremaine et al. (2011) speleothem calcite", "Tremaine, D.M., Froelich, P.N., and Wang, Y. (2011), doi:10.1016/j.gca.2011.06.005", 16.1, 24.6, 16, 21.5),
		{
			Key: "zhouzheng", Name: "Zhou and Zheng (2003) inorganic aragonite",
			References: []string{refBrand14, "Zhou, G.-T., and Zheng, Y.-F. (2003), doi:10.1016/S0016-7037(02)01140-7"},
			Equation:   Aragonite(20.44, 41.48), Range: domain.NewRange(0, 70),
		},
		{
			Key: "kim_arag", Name: "Kim et al. (2007) inorganic aragonite",
			References: []string{refBrand14, "Kim, S.-T., O'Neil, J.R., Hillaire-Marcel, C., and Mucci, A. (2007), doi:10.1016/j.gca.2007.04.019"},
			Equation:   Aragonite(17.88, 31.14), Range: domain.NewRange(0, 40),
		},
		linear("rosenheim", "Rosenheim et al. (2009) sclerosponge aragonite", []string{"Rosenheim, B.E., Swart, P.K., and Willenz, P. (2009), doi:10.1016/j.gca.2009.05.047"}, 16.1, 6.5, 0, 23, 27.5),
		linear("reynaud_sty", "Reynaud-Vaganay et al. (1999) Stylophora pistillata", []string{refReynaud99}, 16.15, 7.69, 1.29, 21, 29),
		linear("reynaud_acro", "Reynaud-Vaganay et al. (1999) Acropora sp.", []string{refReynaud99}, 19.81, 3.70, 1.29, 21, 29),
	}
}

// Default returns a registry of Defaults.
func Default() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(err)
	}
	return r
}
