package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile      string
	APIKey          string
	StartMonth      string
	EndMonth        string
	Months          *int
	UsageMonth      bool
	ReportName      string
	ReportType      []string
	Dir             string
	SLPrivate       bool
	COSAPIKey       string
	COSEndpoint     string
	COSInstanceCRN  string
	COSBucket       string
	SendGridAPIKey  string
	SendGridTo      string
	SendGridFrom    string
	SendGridSubject string
}

// IBMCloudCredentials carries the credentials a billing fetch runs under.
type IBMCloudCredentials struct {
	APIKey         string
	PrivateNetwork bool
}

// Credentials returns the IBM Cloud credentials selected by the arguments.
func (a *CLIArgs) Credentials() IBMCloudCredentials {
	return IBMCloudCredentials{APIKey: a.APIKey, PrivateNetwork: a.SLPrivate}
}

// COSConfig carries the Cloud Object Storage upload settings.
type COSConfig struct {
	APIKey      string
	Endpoint    string
	InstanceCRN string
	Bucket      string
}

// COSConfig returns the COS settings selected by the arguments.
func (a *CLIArgs) COSConfig() COSConfig {
	return COSConfig{
		APIKey:      a.COSAPIKey,
		Endpoint:    a.COSEndpoint,
		InstanceCRN: a.COSInstanceCRN,
		Bucket:      a.COSBucket,
	}
}

// SendGridConfig carries the email delivery settings.
type SendGridConfig struct {
	APIKey  string
	To      string
	From    string
	Subject string
}

// SendGridConfig returns the SendGrid settings selected by the arguments.
func (a *CLIArgs) SendGridConfig() SendGridConfig {
	return SendGridConfig{
		APIKey:  a.SendGridAPIKey,
		To:      a.SendGridTo,
		From:    a.SendGridFrom,
		Subject: a.SendGridSubject,
	}
}
