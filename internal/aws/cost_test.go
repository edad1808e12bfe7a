package aws

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/chelma/cloud-demo/internal/model"
)

func costPlan() model.ClusterPlan {
	return model.ClusterPlan{
		CaptureNodes: model.CaptureNodesPlan{InstanceType: "m5.xlarge", DesiredCount: 5, MaxCount: 7, MinCount: 1},
		OSDomain: model.OSDomainPlan{
			DataNodes:   model.DataNodesPlan{Count: 4, InstanceType: "r6g.large.search", VolumeSize: 1024},
			MasterNodes: model.MasterNodesPlan{Count: 3, InstanceType: "m6g.large.search"},
		},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildEstimate(t *testing.T) {
	est := BuildEstimate("us-east-1", costPlan(), 0.2, 0.1, 0.05)

	if len(est.Items) != 3 {
		t.Fatalf("expected 3 line items, got %d", len(est.Items))
	}
	capture := est.Items[0]
	if capture.Count != 5 || capture.InstanceType != "m5.xlarge" {
		t.Errorf("capture item = %+v", capture)
	}
	if !approx(capture.MonthlyUSD, 0.2*730*5) {
		t.Errorf("capture monthly = %v", capture.MonthlyUSD)
	}
	if !approx(est.Items[1].MonthlyUSD, 0.1*730*4) || !approx(est.Items[2].MonthlyUSD, 0.05*730*3) {
		t.Errorf("domain items = %+v", est.Items[1:])
	}
	if want := 730 + 292 + 109.5; !approx(est.MonthlyUSD, want) {
		t.Errorf("MonthlyUSD = %v, want %v", est.MonthlyUSD, want)
	}
}

func TestEstimateCost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"results":[{"instanceType":"m5.xlarge","onDemandPrice":0.2}]}`)
	}))
	defer srv.Close()

	p := newProvider(nil, &fakePricing{priceList: []string{openSearchPriceDoc}}, nil, "us-east-1", nil, nil)
	p.httpClient = srv.Client()
	p.pricingBase = srv.URL

	est, err := p.EstimateCost(context.Background(), costPlan())
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}
	if est.Region != "us-east-1" {
		t.Errorf("region = %q", est.Region)
	}
	if est.Items[0].HourlyUSD != 0.2 || est.Items[1].HourlyUSD != 0.167 || est.Items[2].HourlyUSD != 0.167 {
		t.Errorf("hourly prices = %+v", est.Items)
	}
}

func TestEstimateCost_PriceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newProvider(nil, &fakePricing{priceList: []string{openSearchPriceDoc}}, nil, "us-east-1", nil, nil)
	p.httpClient = srv.Client()
	p.pricingBase = srv.URL

	if _, err := p.EstimateCost(context.Background(), costPlan()); err == nil {
		t.Error("expected error when capture price is unavailable")
	}
}

type fakeSTS struct {
	account string
	err     error
}

func (f fakeSTS) GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

func TestAccountID(t *testing.T) {
	p := newProvider(nil, nil, fakeSTS{account: "123456789012"}, "us-west-2", nil, nil)
	got, err := p.AccountID(context.Background())
	if err != nil || got != "123456789012" {
		t.Errorf("AccountID() = %q, %v", got, err)
	}
	if p.Region() != "us-west-2" {
		t.Errorf("Region() = %q", p.Region())
	}

	p = newProvider(nil, nil, fakeSTS{err: fmt.Errorf("expired token")}, "us-west-2", nil, nil)
	if _, err := p.AccountID(context.Background()); err == nil {
		t.Error("expected error")
	}
}
