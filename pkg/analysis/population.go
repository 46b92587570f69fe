package analysis

import (
	"osprey-hq/talon/pkg/abac/entity"
	"osprey-hq/talon/pkg/dataset"
)

// SourceAttributeEntropy computes the entropy of one attribute across
// a source entity population. Entities without the attribute are
// excluded from the distribution rather than counted as a value.
func SourceAttributeEntropy(sources []*entity.Source, key entity.SourceKey) float64 {
	var values []entity.Value
	for _, src := range sources {
		if v, ok := src.Attribute(key); ok {
			values = append(values, v)
		}
	}
	return Entropy(distributionValues(Distribution(values)))
}

// DestinationAttributeEntropy computes the entropy of one attribute
// across a destination entity population.
func DestinationAttributeEntropy(dests []*entity.Destination, key entity.DestinationKey) float64 {
	var values []entity.Value
	for _, dst := range dests {
		if v, ok := dst.Attribute(key); ok {
			values = append(values, v)
		}
	}
	return Entropy(distributionValues(Distribution(values)))
}

// UserAttributeEntropy computes the entropy of one attribute across a
// lab user population.
func UserAttributeEntropy(users []dataset.User, key dataset.UserKey) float64 {
	var values []entity.Value
	for _, u := range users {
		if v, ok := u.Attributes[key]; ok {
			values = append(values, v)
		}
	}
	return Entropy(distributionValues(Distribution(values)))
}

// ResourceAttributeEntropy computes the entropy of one attribute
// across a lab resource population.
func ResourceAttributeEntropy(resources []dataset.Resource, key dataset.ResourceKey) float64 {
	var values []entity.Value
	for _, r := range resources {
		if v, ok := r.Attributes[key]; ok {
			values = append(values, v)
		}
	}
	return Entropy(distributionValues(Distribution(values)))
}
