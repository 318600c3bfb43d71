package g2b

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kbidlab/bidscope/internal/config"
	"github.com/kbidlab/bidscope/internal/models"
)

// officerFields are the candidate metadata fields naming the contracting
// officer, in preference order.
var officerFields = []string{"exctvNm", "chrgrNm", "ntceChrgrNm"}

// costFields are the statutory cost components summed into the A value.
// Missing components count as 0.
var costFields = []string{
	"sftyMngcst",
	"sftyChckMngcst",
	"rtrfundNon",
	"mrfnHealthInsrprm",
	"npnInsrprm",
	"odsnLngtrmrcprInsrprm",
	"qltyMngcst",
}

// Client fetches bid-notice metadata and opening results from the
// procurement data services.
type Client struct {
	bidInfoURL     string
	scsbidInfoURL  string
	serviceKey     string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a procurement data client from configuration.
func NewClient(cfg config.G2BConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelayBase := cfg.RetryDelayBase
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bidInfoURL:     cfg.BidInfoURL,
		scsbidInfoURL:  cfg.ScsbidInfoURL,
		serviceKey:     cfg.ServiceKey,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// FetchOfficer returns the contracting officer's name for a notice: the
// first non-blank of the candidate fields. Missing data yields
// models.OfficerUnknown without an error.
func (c *Client) FetchOfficer(ctx context.Context, noticeNo string) (string, error) {
	items, err := c.fetchNoticeDetail(ctx, noticeNo)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return models.OfficerUnknown, nil
	}
	for _, field := range officerFields {
		if name := fieldString(items[0], field); name != "" {
			return name, nil
		}
	}
	return models.OfficerUnknown, nil
}

// FetchLowerRate returns the notice's success-rate (lower-bound) threshold
// percentage, or 0 when unpublished.
func (c *Client) FetchLowerRate(ctx context.Context, noticeNo string) (float64, error) {
	items, err := c.fetchNoticeDetail(ctx, noticeNo)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	if rate, ok := toFloat(items[0]["sucsfbidLwltRate"]); ok {
		return rate, nil
	}
	return 0, nil
}

// FetchAValue returns the aggregate cost offset for a notice: the sum of
// the statutory cost components of the first base-amount item, treating
// missing or non-numeric components as 0.
func (c *Client) FetchAValue(ctx context.Context, noticeNo string) (float64, error) {
	query := url.Values{
		"inqryDiv":   {"2"},
		"bidNtceNo":  {noticeNo},
		"pageNo":     {"1"},
		"numOfRows":  {"10"},
		"type":       {"json"},
		"ServiceKey": {c.serviceKey},
	}
	items, err := c.fetchJSON(ctx, c.bidInfoURL+"/getBidPblancListInfoCnstwkBsisAmount", query)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	var sum float64
	for _, field := range costFields {
		if v, ok := toFloat(items[0][field]); ok {
			sum += v
		}
	}
	return sum, nil
}

// FetchBasePrices returns the notice's preliminary base-price estimates in
// published order. Items missing either amount are dropped.
func (c *Client) FetchBasePrices(ctx context.Context, noticeNo, noticeOrd string) ([]models.BasePriceEstimate, error) {
	query := url.Values{
		"inqryDiv":   {"2"},
		"bidNtceNo":  {noticeNo},
		"bidNtceOrd": {noticeOrd},
		"pageNo":     {"1"},
		"numOfRows":  {"15"},
		"type":       {"json"},
		"ServiceKey": {c.serviceKey},
	}
	items, err := c.fetchJSON(ctx, c.scsbidInfoURL+"/getOpengResultListInfoCnstwkPreparPcDetail", query)
	if err != nil {
		return nil, err
	}

	estimates := make([]models.BasePriceEstimate, 0, len(items))
	for _, item := range items {
		base, okBase := toFloat(item["bssamt"])
		plan, okPlan := toFloat(item["bsisPlnprc"])
		if !okBase || !okPlan {
			continue
		}
		estimates = append(estimates, models.BasePriceEstimate{BaseAmount: base, PlanAmount: plan})
	}
	return estimates, nil
}

// openingEnvelope mirrors the XML response of the bid-opening endpoint.
// encoding/xml decodes absent, single, and repeated item elements into the
// same slice, which covers the envelope's shape polymorphism.
type openingEnvelope struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []openingItem `xml:"item"`
		} `xml:"items"`
	} `xml:"body"`
}

type openingItem struct {
	Bidder string `xml:"prcbdrNm"`
	Amount string `xml:"bidprcAmt"`
}

// FetchOpeningResults returns a notice's bid-opening results in rank order
// (index 0 is the winning bid). Rows with malformed amounts are dropped.
// This is the one critical lookup: transport or decode failure is returned
// as an error for the caller to surface.
func (c *Client) FetchOpeningResults(ctx context.Context, noticeNo string) ([]models.BidSubmission, error) {
	query := url.Values{
		"serviceKey": {c.serviceKey},
		"pageNo":     {"1"},
		"numOfRows":  {"999"},
		"bidNtceNo":  {noticeNo},
	}

	raw, err := c.doRequest(ctx, c.scsbidInfoURL+"/getOpengResultListInfoOpengCompt", query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opening results: %w", err)
	}

	var envelope openingEnvelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode opening results: %w", err)
	}

	bids := make([]models.BidSubmission, 0, len(envelope.Body.Items.Item))
	for _, item := range envelope.Body.Items.Item {
		amount, ok := toFloat(item.Amount)
		if !ok {
			continue
		}
		bids = append(bids, models.BidSubmission{Bidder: item.Bidder, Amount: amount})
	}
	return bids, nil
}

// fetchNoticeDetail queries the notice metadata endpoint shared by the
// officer and threshold lookups.
func (c *Client) fetchNoticeDetail(ctx context.Context, noticeNo string) ([]map[string]interface{}, error) {
	query := url.Values{
		"inqryDiv":   {"2"},
		"bidNtceNo":  {noticeNo},
		"pageNo":     {"1"},
		"numOfRows":  {"1"},
		"type":       {"json"},
		"ServiceKey": {c.serviceKey},
	}
	return c.fetchJSON(ctx, c.bidInfoURL+"/getBidPblancListInfoCnstwk", query)
}

// fetchJSON performs a request and normalizes the JSON envelope to an item
// list. A decode failure or an API-level rejection yields an empty list,
// matching the "this lookup produced nothing" contract.
func (c *Client) fetchJSON(ctx context.Context, endpoint string, query url.Values) ([]map[string]interface{}, error) {
	raw, err := c.doRequest(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil
	}
	return Items(envelope), nil
}

// doRequest performs an HTTP GET with bounded retry and linear backoff,
// retrying transport errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	fullURL := endpoint + "?" + query.Encode()
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
