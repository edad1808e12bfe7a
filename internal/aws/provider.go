package aws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"
)

const credentialCheckTimeout = 3 * time.Second

var (
	ErrAWSCredentials  = errors.New("AWS credentials not found; set AWS_PROFILE, run 'aws sso login', or configure ~/.aws/credentials")
	ErrNoInstanceTypes = errors.New("none of the requested instance types are offered in this region")
)

// ec2API is a minimal interface for the EC2 calls we need.
type ec2API interface {
	DescribeInstanceTypes(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error)
}

// pricingAPI is a minimal interface for the Pricing API calls we need.
type pricingAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

// stsAPI is a minimal interface for the STS calls we need.
type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Provider answers catalog, pricing and identity questions about the target account.
type Provider struct {
	cfg           aws.Config
	ec2Client     ec2API
	pricingClient pricingAPI
	stsClient     stsAPI
	httpClient    *http.Client
	pricingBase   string
	region        string
	cache         *FileCache
	logger        *zap.Logger
}

// NewProvider creates a provider using the default AWS SDK config chain.
// IMDS (EC2 metadata) is disabled to avoid long timeouts when running locally.
// On EC2, use environment variables or instance profile via AWS_PROFILE.
func NewProvider(ctx context.Context, region, cacheDir string, logger *zap.Logger) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithEC2IMDSClientEnableState(imds.ClientDisabled),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAWSCredentials, err)
	}

	// Verify credentials are available before making any API calls
	credCtx, cancel := context.WithTimeout(ctx, credentialCheckTimeout)
	defer cancel()
	if _, err := cfg.Credentials.Retrieve(credCtx); err != nil {
		return nil, ErrAWSCredentials
	}

	// Pricing API is only available in us-east-1
	pricingCfg := cfg.Copy()
	pricingCfg.Region = "us-east-1"

	var cache *FileCache
	if cacheDir != "" {
		cache = NewFileCache(cacheDir)
	}

	p := newProvider(ec2.NewFromConfig(cfg), pricing.NewFromConfig(pricingCfg), sts.NewFromConfig(cfg), region, cache, logger)
	p.cfg = cfg
	return p, nil
}

func newProvider(ec2Client ec2API, pricingClient pricingAPI, stsClient stsAPI, region string, cache *FileCache, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		ec2Client:     ec2Client,
		pricingClient: pricingClient,
		stsClient:     stsClient,
		httpClient:    &http.Client{Timeout: pricingHTTPTimeout},
		pricingBase:   pricingAPIBase,
		region:        region,
		cache:         cache,
		logger:        logger,
	}
}

// Region returns the AWS region.
func (p *Provider) Region() string {
	return p.region
}

// Config returns the SDK config the provider was built from, for creating other clients.
func (p *Provider) Config() aws.Config {
	return p.cfg
}

// AccountID returns the account the credentials belong to.
func (p *Provider) AccountID(ctx context.Context) (string, error) {
	out, err := p.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("getting caller identity: %w", err)
	}
	return aws.ToString(out.Account), nil
}
