package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"go.uber.org/zap"
)

const (
	// pricingAPIBase is the public EC2 pricing API (no auth required).
	pricingAPIBase = "https://go.runs-on.com/api/instances"

	// pricingHTTPTimeout is the timeout for each pricing HTTP request.
	pricingHTTPTimeout = 10 * time.Second

	// openSearchServiceCode is the Pricing API service code for OpenSearch Service.
	openSearchServiceCode = "AmazonES"
)

// pricingAPIResult maps the runs-on API response fields we need.
type pricingAPIResult struct {
	InstanceType  string  `json:"instanceType"`
	OnDemandPrice float64 `json:"onDemandPrice"`
}

type pricingAPIResponse struct {
	Results []pricingAPIResult `json:"results"`
}

// EC2HourlyPrice returns the Linux on-demand hourly price of an EC2 instance type.
func (p *Provider) EC2HourlyPrice(ctx context.Context, instanceType string) (float64, error) {
	key := fmt.Sprintf("ec2-price-%s-%s", p.region, instanceType)
	return cached(p.cache, key, priceCacheTTL, func() (float64, error) {
		return fetchInstancePrice(ctx, p.httpClient, p.pricingBase, instanceType, p.region)
	})
}

// fetchInstancePrice queries the public pricing API for a single instance type.
func fetchInstancePrice(ctx context.Context, client *http.Client, base, instanceType, region string) (float64, error) {
	url := fmt.Sprintf("%s/%s?region=%s&platform=Linux/UNIX", base, instanceType, region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("pricing API returned %d for %s", resp.StatusCode, instanceType)
	}

	var pr pricingAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, err
	}

	// On-demand is the same across AZs
	for _, r := range pr.Results {
		if r.OnDemandPrice > 0 {
			return r.OnDemandPrice, nil
		}
	}
	return 0, fmt.Errorf("no pricing data for %s in %s", instanceType, region)
}

// OpenSearchHourlyPrice returns the on-demand hourly price of an OpenSearch Service
// instance type, such as "r6g.large.search".
func (p *Provider) OpenSearchHourlyPrice(ctx context.Context, instanceType string) (float64, error) {
	key := fmt.Sprintf("es-price-%s-%s", p.region, instanceType)
	return cached(p.cache, key, priceCacheTTL, func() (float64, error) {
		return p.fetchOpenSearchPrice(ctx, instanceType)
	})
}

func (p *Provider) fetchOpenSearchPrice(ctx context.Context, instanceType string) (float64, error) {
	out, err := p.pricingClient.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: aws.String(openSearchServiceCode),
		Filters: []pricingtypes.Filter{
			{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("instanceType"), Value: aws.String(instanceType)},
			{Type: pricingtypes.FilterTypeTermMatch, Field: aws.String("regionCode"), Value: aws.String(p.region)},
		},
		FormatVersion: aws.String("aws_v1"),
		MaxResults:    aws.Int32(10),
	})
	if err != nil {
		return 0, fmt.Errorf("getting OpenSearch prices: %w", err)
	}

	for _, doc := range out.PriceList {
		price, ok, err := onDemandHourlyUSD(doc)
		if err != nil {
			p.logger.Debug("skipping unparseable price document", zap.Error(err))
			continue
		}
		if ok {
			return price, nil
		}
	}
	return 0, fmt.Errorf("no OpenSearch pricing data for %s in %s", instanceType, p.region)
}

// priceListItem is the part of a Pricing API price document we read.
type priceListItem struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// onDemandHourlyUSD extracts the first positive hourly USD price from a price document.
func onDemandHourlyUSD(doc string) (float64, bool, error) {
	var item priceListItem
	if err := json.Unmarshal([]byte(doc), &item); err != nil {
		return 0, false, fmt.Errorf("parsing price document: %w", err)
	}

	for _, term := range item.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			if dim.Unit != "Hrs" {
				continue
			}
			price, err := strconv.ParseFloat(dim.PricePerUnit["USD"], 64)
			if err != nil {
				continue
			}
			if price > 0 {
				return price, true, nil
			}
		}
	}
	return 0, false, nil
}
