package carbon

import (
	"context"
	"fmt"
	"math"

	"github.com/farmerchain/farmerchain/internal/model"
)

// emissionFactors are grams of CO2 per kilometer per vehicle at full
// load.
var emissionFactors = map[string]float64{
	model.VehicleSmallTruck:       250,
	model.VehicleMediumTruck:      400,
	model.VehicleLargeTruck:       600,
	model.VehicleArticulatedTruck: 900,
}

// A mature tree absorbs roughly 21 kg of CO2 per year.
const gramsPerTree = 21000

// Request describes one road shipment to estimate.
type Request struct {
	StartAddr      string `json:"start_addr"`
	EndAddr        string `json:"end_addr"`
	VehicleType    string `json:"vehicle_type"`
	VehicleCount   int    `json:"vehicle_count"`
	LoadPercentage int    `json:"load_percentage"`
	EmptyReturn    bool   `json:"empty_return"`
}

// Result is the estimated footprint of a shipment.
type Result struct {
	DistanceKm       float64 `json:"distance_km"`
	TotalEmissionsKg float64 `json:"total_emissions_kg"`
	EquivalentTrees  float64 `json:"equivalent_trees"`
}

// Calculator estimates road transport emissions from route distance.
type Calculator struct {
	Routes *RouteFinder
}

// CalculateRoadEmissions computes the footprint of moving goods between
// two addresses. Partially loaded vehicles emit proportionally more per
// ton moved; an empty return doubles both distance and emissions.
func (c *Calculator) CalculateRoadEmissions(ctx context.Context, req Request) (Result, error) {
	factor, ok := emissionFactors[req.VehicleType]
	if !ok {
		return Result{}, fmt.Errorf("unknown vehicle type: %s", req.VehicleType)
	}

	count := req.VehicleCount
	if count < 1 {
		count = 1
	}
	load := req.LoadPercentage
	if load < 1 || load > 100 {
		load = 100
	}

	distanceKm, err := c.Routes.RoadDistanceKm(ctx, req.StartAddr, req.EndAddr)
	if err != nil {
		return Result{}, err
	}

	loadFactor := float64(load) / 100
	emissionsGrams := factor * distanceKm * float64(count) / loadFactor

	if req.EmptyReturn {
		emissionsGrams *= 2
		distanceKm *= 2
	}

	return Result{
		DistanceKm:       round2(distanceKm),
		TotalEmissionsKg: round2(emissionsGrams / 1000),
		EquivalentTrees:  math.Round(emissionsGrams/gramsPerTree*10) / 10,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
