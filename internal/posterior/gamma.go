package posterior

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Gamma draws from Gamma(shape=k, scale=1), returning 0 when k <= 0.
func Gamma(k float64, src rand.Source) float64 {
	if k <= 0 {
		return 0
	}
	g := distuv.Gamma{Alpha: k, Beta: 1, Src: src}
	return g.Rand()
}
