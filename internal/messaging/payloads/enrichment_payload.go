package payloads

// Job — вид задачи обогащения
type Job string

const (
	JobTags   Job = "tags"
	JobColors Job = "colors"
)

// EnrichmentPayload — задача обогащения одного загруженного фото,
// передаётся через RabbitMQ.
type EnrichmentPayload struct {
	JobID    string `json:"job_id"`
	Job      Job    `json:"job"`
	PhotoID  uint   `json:"photo_id"`
	ImageURL string `json:"image_url"`
}
