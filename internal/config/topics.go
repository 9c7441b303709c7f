package config

const (
	TopicIngestEmbed = "ingest.embed"
)
