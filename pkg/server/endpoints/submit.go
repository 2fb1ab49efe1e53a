package endpoints

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/middleware"
)

// SubmitOrderRequest is the body of POST /orders: a priced proof request the
// broker should consider committing to.
type SubmitOrderRequest struct {
	RequestID       string `json:"request_id"`
	Client          string `json:"client"`
	ImageURL        string `json:"image_url"`
	InputURL        string `json:"input_url,omitempty"`
	InlineInput     string `json:"inline_input,omitempty"`
	MinPrice        string `json:"min_price"`
	MaxPrice        string `json:"max_price"`
	BiddingStart    uint64 `json:"bidding_start"`
	RampUpPeriod    uint32 `json:"ramp_up_period"`
	LockTimeout     uint32 `json:"lock_timeout"`
	Timeout         uint32 `json:"timeout"`
	LockStake       string `json:"lock_stake"`
	ClientSig       string `json:"client_sig"`
	FulfillmentType string `json:"fulfillment_type"`
	TargetTimestamp uint64 `json:"target_timestamp,omitempty"`
	ExpireTimestamp uint64 `json:"expire_timestamp,omitempty"`
	TotalCycles     uint64 `json:"total_cycles,omitempty"`
}

// SubmitOrderResponse is the body of a successful POST /orders.
type SubmitOrderResponse struct {
	ID string `json:"id"`
}

// RegisterSubmitEndpoints registers the order submission endpoint, feeding
// accepted submissions into the order monitor's incoming channel.
func RegisterSubmitEndpoints(s *server.Server, auth *middleware.APIAuthenticator, incoming chan<- *model.OrderRequest) {
	s.Router.Handle("/orders", auth.Middleware(handleSubmitOrder(s, incoming))).Methods("POST")
}

func handleSubmitOrder(s *server.Server, incoming chan<- *model.OrderRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var body SubmitOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := parseSubmission(&body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		cfg := s.Config.Snapshot()
		for _, addr := range cfg.Market.PriorityAddresses {
			if strings.EqualFold(addr, body.Client) {
				order.Primary = true
				break
			}
		}

		select {
		case incoming <- order:
		default:
			writeError(w, http.StatusServiceUnavailable, "order queue is full")
			return
		}

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(SubmitOrderResponse{ID: order.ID()})
	}
}

func parseSubmission(body *SubmitOrderRequest) (*model.OrderRequest, error) {
	requestID, err := parseBig(body.RequestID)
	if err != nil {
		return nil, errInvalidField("request_id")
	}
	minPrice, err := parseBig(body.MinPrice)
	if err != nil {
		return nil, errInvalidField("min_price")
	}
	maxPrice, err := parseBig(body.MaxPrice)
	if err != nil {
		return nil, errInvalidField("max_price")
	}
	lockStake, err := parseBig(body.LockStake)
	if err != nil {
		return nil, errInvalidField("lock_stake")
	}
	fulfillmentType, err := model.FulfillmentTypeString(body.FulfillmentType)
	if err != nil {
		return nil, errInvalidField("fulfillment_type")
	}
	if !common.IsHexAddress(body.Client) {
		return nil, errInvalidField("client")
	}
	var clientSig []byte
	if body.ClientSig != "" {
		clientSig, err = hexutil.Decode(body.ClientSig)
		if err != nil {
			return nil, errInvalidField("client_sig")
		}
	}
	var inlineInput []byte
	if body.InlineInput != "" {
		inlineInput, err = hexutil.Decode(body.InlineInput)
		if err != nil {
			return nil, errInvalidField("inline_input")
		}
	}

	return &model.OrderRequest{
		Request: model.ProofRequest{
			RequestID:   requestID,
			Client:      common.HexToAddress(body.Client),
			ImageURL:    body.ImageURL,
			InputURL:    body.InputURL,
			InlineInput: inlineInput,
			Offer: model.Offer{
				MinPrice:     minPrice,
				MaxPrice:     maxPrice,
				BiddingStart: body.BiddingStart,
				RampUpPeriod: body.RampUpPeriod,
				LockTimeout:  body.LockTimeout,
				Timeout:      body.Timeout,
				LockStake:    lockStake,
			},
		},
		ClientSig:       clientSig,
		FulfillmentType: fulfillmentType,
		TargetTimestamp: body.TargetTimestamp,
		ExpireTimestamp: body.ExpireTimestamp,
		TotalCycles:     body.TotalCycles,
	}, nil
}

// parseBig accepts decimal or 0x-prefixed hex values.
func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errInvalidField("value")
	}
	return v, nil
}

type fieldError string

func errInvalidField(name string) error { return fieldError(name) }

func (f fieldError) Error() string { return "invalid " + string(f) }

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
