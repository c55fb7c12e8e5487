package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	APIKey          string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	StartMonth      string   `json:"start_month" yaml:"start_month" toml:"start_month"`
	EndMonth        string   `json:"end_month" yaml:"end_month" toml:"end_month"`
	Months          int      `json:"months" yaml:"months" toml:"months"`
	UsageMonth      bool     `json:"usage_month" yaml:"usage_month" toml:"usage_month"`
	ReportName      string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType      []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir             string   `json:"dir" yaml:"dir" toml:"dir"`
	SLPrivate       bool     `json:"sl_private" yaml:"sl_private" toml:"sl_private"`
	COSAPIKey       string   `json:"cos_api_key" yaml:"cos_api_key" toml:"cos_api_key"`
	COSEndpoint     string   `json:"cos_endpoint" yaml:"cos_endpoint" toml:"cos_endpoint"`
	COSInstanceCRN  string   `json:"cos_instance_crn" yaml:"cos_instance_crn" toml:"cos_instance_crn"`
	COSBucket       string   `json:"cos_bucket" yaml:"cos_bucket" toml:"cos_bucket"`
	SendGridAPIKey  string   `json:"sendgrid_api_key" yaml:"sendgrid_api_key" toml:"sendgrid_api_key"`
	SendGridTo      string   `json:"sendgrid_to" yaml:"sendgrid_to" toml:"sendgrid_to"`
	SendGridFrom    string   `json:"sendgrid_from" yaml:"sendgrid_from" toml:"sendgrid_from"`
	SendGridSubject string   `json:"sendgrid_subject" yaml:"sendgrid_subject" toml:"sendgrid_subject"`
}
