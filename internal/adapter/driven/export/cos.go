package export

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/IBM/go-sdk-core/v5/core"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/repository"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
)

// COSRepositoryImpl faz upload de relatórios para o IBM Cloud Object Storage
// usando a API compatível com S3.
type COSRepositoryImpl struct{}

// NewCOSRepository cria uma nova implementação do StorageRepository.
func NewCOSRepository() repository.StorageRepository {
	return &COSRepositoryImpl{}
}

// Upload envia o arquivo local para o bucket configurado. A chave de API pode
// ser um par HMAC "ACCESS_KEY:SECRET_KEY" ou uma chave de API IAM; no segundo
// caso a requisição é autenticada com um bearer token IAM.
func (r *COSRepositoryImpl) Upload(ctx context.Context, localPath string, cfg types.COSConfig) error {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return fmt.Errorf("cos upload requires an endpoint and a bucket")
	}

	client, err := newCOSClient(ctx, cfg)
	if err != nil {
		return err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("error opening '%s' for upload: %w", localPath, err)
	}
	defer file.Close()

	key := filepath.Base(localPath)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("error uploading '%s' to bucket '%s': %w", key, cfg.Bucket, err)
	}
	return nil
}

func newCOSClient(ctx context.Context, cfg types.COSConfig) (*s3.Client, error) {
	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "https://" + endpoint
	}
	region := regionFromEndpoint(endpoint)

	// Par HMAC: assinatura SigV4 padrão do SDK.
	if access, secret, ok := strings.Cut(cfg.APIKey, ":"); ok {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(access, secret, "")),
		)
		if err != nil {
			return nil, fmt.Errorf("error configuring COS client: %w", err)
		}
		return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}

	// Chave de API IAM: bearer token injetado por transporte, sem SigV4.
	authenticator, err := core.NewIamAuthenticatorBuilder().SetApiKey(cfg.APIKey).Build()
	if err != nil {
		return nil, fmt.Errorf("error creating IAM authenticator for COS: %w", err)
	}
	return s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  aws.AnonymousCredentials{},
		UsePathStyle: true,
		HTTPClient: &http.Client{Transport: &iamTransport{
			base:        http.DefaultTransport,
			auth:        authenticator,
			instanceCRN: cfg.InstanceCRN,
		}},
	}), nil
}

// iamTransport adiciona o bearer token IAM e o cabeçalho da instância de
// serviço a cada requisição S3.
type iamTransport struct {
	base        http.RoundTripper
	auth        *core.IamAuthenticator
	instanceCRN string
}

func (t *iamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.auth.Authenticate(req); err != nil {
		return nil, fmt.Errorf("error authenticating COS request: %w", err)
	}
	if t.instanceCRN != "" {
		req.Header.Set("ibm-service-instance-id", t.instanceCRN)
	}
	return t.base.RoundTrip(req)
}

// regionFromEndpoint extrai a região de um endpoint público ou privado do
// COS, por exemplo "s3.us-south.cloud-object-storage.appdomain.cloud".
func regionFromEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "us-standard"
	}
	parts := strings.Split(u.Hostname(), ".")
	for i, part := range parts {
		if (part == "s3" || part == "private" || part == "direct") && i+1 < len(parts) {
			candidate := parts[i+1]
			if candidate != "private" && candidate != "direct" && candidate != "cloud-object-storage" {
				return candidate
			}
		}
	}
	return "us-standard"
}
