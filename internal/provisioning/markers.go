package provisioning

// Zone marker objects keep empty zone prefixes listable. The content is
// written once and never overwritten, so manual customization survives
// reseeding.
const (
	MarkerContent     = "placeholder file for data lake zone"
	MarkerContentType = "text/plain"
)

// MarkerKey returns the marker object key for a zone.
func MarkerKey(zone string) string {
	return zone + "/.keep"
}
