package events

const (
	TopicCheckoutRequested = "storefront.checkout.requested"
	TopicCatalogUpdated    = "storefront.catalog.updated"
)

// PartitionKey keeps every event of one cart or storefront on one partition.
func PartitionKey(id string) []byte { return []byte(id) }
