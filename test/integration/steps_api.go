package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/cucumber/godog"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/server/endpoints"
)

// StepsContext holds state shared between step definitions.
type StepsContext struct {
	tc           *TestContext
	authToken    string
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context.
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions.
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a broker is running$`, s.aBrokerIsRunning)
	sc.Step(`^I have a valid API token$`, s.iHaveAValidAPIToken)
	sc.Step(`^a committed order "([^"]*)" exists$`, s.aCommittedOrderExists)
	sc.Step(`^order "([^"]*)" has status "([^"]*)"$`, s.orderHasStatus)

	sc.Step(`^I GET "([^"]*)"$`, s.iGET)
	sc.Step(`^I GET "([^"]*)" without a token$`, s.iGETWithoutToken)

	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should list (\d+) orders?$`, s.theResponseShouldListOrders)
	sc.Step(`^the response order status should be "([^"]*)"$`, s.theResponseOrderStatusShouldBe)
}

func (s *StepsContext) aBrokerIsRunning() error {
	resp, err := http.Get(s.tc.APIServer.URL + "/health")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("broker is not healthy: status %d", resp.StatusCode)
	}
	return nil
}

func (s *StepsContext) iHaveAValidAPIToken() error {
	token, err := s.tc.Auth.IssueToken("integration-test", time.Minute)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) aCommittedOrderExists(id string) error {
	requestID, ok := new(big.Int).SetString(id, 0)
	if !ok {
		return fmt.Errorf("invalid order id %q", id)
	}

	order := &model.OrderRequest{
		Request: model.ProofRequest{
			RequestID: requestID,
			ImageURL:  "http://example.com/image",
			Offer: model.Offer{
				MinPrice:     big.NewInt(1),
				MaxPrice:     big.NewInt(2),
				BiddingStart: uint64(time.Now().Unix()),
				LockTimeout:  600,
				Timeout:      1200,
				LockStake:    big.NewInt(0),
			},
		},
		FulfillmentType: model.LockAndFulfill,
	}
	return s.tc.Store.InsertAcceptedOrder(context.Background(), order, big.NewInt(3))
}

func (s *StepsContext) orderHasStatus(id, status string) error {
	orderStatus, err := model.OrderStatusString(status)
	if err != nil {
		return err
	}
	orderID := fmt.Sprintf("%s-%s", id, model.LockAndFulfill)
	return s.tc.Store.SetOrderStatus(context.Background(), orderID, orderStatus)
}

func (s *StepsContext) iGET(path string) error {
	return s.doGET(path, s.authToken)
}

func (s *StepsContext) iGETWithoutToken(path string) error {
	return s.doGET(path, "")
}

func (s *StepsContext) doGET(path, token string) error {
	req, err := http.NewRequest(http.MethodGet, s.tc.APIServer.URL+path, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	s.response = resp
	s.responseBody = body
	return nil
}

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldListOrders(count int) error {
	var orders []endpoints.OrderResponse
	if err := json.Unmarshal(s.responseBody, &orders); err != nil {
		return fmt.Errorf("failed to decode order list: %w", err)
	}
	if len(orders) != count {
		return fmt.Errorf("expected %d orders, got %d", count, len(orders))
	}
	return nil
}

func (s *StepsContext) theResponseOrderStatusShouldBe(status string) error {
	var order endpoints.OrderResponse
	if err := json.Unmarshal(s.responseBody, &order); err != nil {
		return fmt.Errorf("failed to decode order: %w", err)
	}
	if order.Status != status {
		return fmt.Errorf("expected status %q, got %q", status, order.Status)
	}
	return nil
}
