package calibration

import (
	"fmt"
	"slices"
)

// Effect is a carbonate-ion correction: δ¹⁸O_corr = δ¹⁸O − (Slope·[CO₃²⁻] + Intercept).
// Intercepts give a zero offset at the modern 200 µmol/kg.
type Effect struct {
	Key        string
	Name       string
	Slope      float64
	Intercept  float64
	References []string
}

// Correct applies the effect to a raw carbonate value.
func (e Effect) Correct(d18O, co3 float64) float64 {
	return d18O - (e.Slope*co3 + e.Intercept)
}

const (
	refZiveri12 = "Ziveri, P., Thoms, S., Probert, I., Geisen, M., and Langer, G. (2012), doi:10.5194/bg-9-1025-2012"
	refSpero97  = "Spero, H.J., Bijma, J., Lea, D.W., and Bemis, B.E. (1997), doi:10.1038/37333"
	refSpero99  = "Spero, H.J., Bijma, J., Lea, D.W., and Russell, A.D. (1999), doi:10.1007/978-1-4615-4197-4_19"
	refBijma99  = "Bijma, J., Spero, H.J., and Lea, D.W. (1999), doi:10.1007/978-3-642-58646-0_20"
)

var effects = []Effect{
	{Key: "ziveri_cocco", Name: "Ziveri et al. (2012) Calcidiscus leptoporus", Slope: -0.0048, Intercept: 0.96, References: []string{refZiveri12}},
	{Key: "ziveri_dino", Name: "Ziveri et al. (2012) Thoracosphaera heimii", Slope: -0.024, Intercept: 4.8, References: []string{refZiveri12}},
	{Key: "mean", Name: "Spero et al. (1999) four-species mean", Slope: -0.002525, Intercept: 0.505, References: []string{refSpero99}},
	{Key: "spero_orb", Name: "Spero et al. (1997) Orbulina universa", Slope: -0.0020, Intercept: 0.4, References: []string{refSpero97}},
	{Key: "spero_bul", Name: "Spero et al. (1997) Globigerina bulloides", Slope: -0.0045, Intercept: 0.9, References: []string{refSpero97}},
	{Key: "spero_sac", Name: "Bijma et al. (1999) Trilobatus sacculifer", Slope: -0.0014, Intercept: 0.28, References: []string{refBijma99}},
	{Key: "spero_rub", Name: "Bijma et al. (1999) Globigerinoides ruber", Slope: -0.0022, Intercept: 0.44, References: []string{refBijma99}},
}

// LookupEffect returns the carbonate-ion effect registered under key.
func LookupEffect(key string) (Effect, error) {
	i := slices.IndexFunc(effects, func(e Effect) bool { return e.Key == key })
	if i < 0 {
		return Effect{}, fmt.Errorf("%w carbonate-ion effect %q", ErrUnknown, key)
	}
	return effects[i], nil
}

// Effects lists every carbonate-ion effect.
func Effects() []Effect { return slices.Clone(effects) }
