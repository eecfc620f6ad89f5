package dataset

import "github.com/roach88/ecomkpi/internal/rng"

// GenerateCustomers draws p.Customers independent customers.
func GenerateCustomers(src *rng.Source, p Params) []Customer {
	days := p.DayCount()
	customers := make([]Customer, p.Customers)
	for i := range customers {
		offset := src.IntRange(0, days-1)
		region := src.Weighted(p.Regions, p.RegionWeights)
		channel := src.Weighted(p.Channels, p.ChannelWeights)
		customers[i] = Customer{
			ID:                 int64(i + 1),
			SignupDate:         p.StartDate.AddDays(offset),
			Region:             region,
			AcquisitionChannel: channel,
		}
	}
	return customers
}
