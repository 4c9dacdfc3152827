package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/marketerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/services/market/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketServiceInterface(ctrl)
	handler := NewMarketHandler(mockService)

	// Initialize Gin in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auctions/:resource/bids", handler.PlaceBidHandler)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name: "success_valid_bid",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      500,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(500)).
					Return(auctionService.PlaceBidResult{
						Accepted: true,
						Amount:   500,
						State:    model.AuctionStarted,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, true, data["accepted"])
				require.Equal(t, 500.0, data["amount"])
				require.Equal(t, "started", data["state"])
			},
		},
		{
			name: "soft_fail_auction_expired",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      500,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(500)).
					Return(auctionService.PlaceBidResult{
						Accepted: false,
						State:    model.AuctionEnded,
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "auction has ended, bid not taken",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, false, data["accepted"])
				require.Equal(t, "ended", data["state"])
			},
		},
		{
			name:           "invalid_json",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "missing_bidder",
			requestBody: helpers.PlaceBidRequest{
				BidderToken: "alice-token",
				Amount:      500,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "zero_amount",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      0,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "service_bid_below_floor",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      50,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(50)).
					Return(auctionService.PlaceBidResult{}, marketerrors.ErrBidTooSmall)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bid below price floor",
		},
		{
			name: "service_bid_already_active",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      600,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(600)).
					Return(auctionService.PlaceBidResult{}, marketerrors.ErrBidAlreadyActive)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bidder already has an active bid",
		},
		{
			name: "service_balance_too_low",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      600,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(600)).
					Return(auctionService.PlaceBidResult{}, marketerrors.ErrBalanceTooLow)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bidder balance too low",
		},
		{
			name: "service_auction_missing",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      600,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(600)).
					Return(auctionService.PlaceBidResult{}, marketerrors.ErrAccountNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "record not found",
		},
		{
			name: "service_generic_error",
			requestBody: helpers.PlaceBidRequest{
				Bidder:      "alice",
				BidderToken: "alice-token",
				Amount:      600,
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("res1", "alice", "alice-token", uint64(600)).
					Return(auctionService.PlaceBidResult{}, errors.New("ledger failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var reqBody []byte
			var err error
			switch v := tc.requestBody.(type) {
			case string:
				reqBody = []byte(v)
			default:
				reqBody, err = json.Marshal(v)
				require.NoError(t, err)
			}

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auctions/res1/bids", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			err = json.Unmarshal(w.Body.Bytes(), &resp)
			require.NoError(t, err)

			require.Contains(t, resp["message"], tc.expectedMsg)

			if tc.validateData != nil && w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}

// Test CreateAuctionHandler
func TestCreateAuctionHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketServiceInterface(ctrl)
	handler := NewMarketHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auctions", handler.CreateAuctionHandler)

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "success_minimum_floor",
			requestBody: helpers.CreateAuctionRequest{
				Resource:       "res1",
				Authority:      "seller",
				TokenMint:      "usd",
				MaxWinners:     3,
				PriceFloorKind: "minimum",
				PriceFloor:     100,
			},
			mockSetup: func() {
				mockService.EXPECT().
					CreateAuction(gomock.Any()).
					Return(model.Handle("h-res1"), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "auction created successfully",
		},
		{
			name: "blinded_floor_missing_commitment",
			requestBody: helpers.CreateAuctionRequest{
				Resource:       "res1",
				Authority:      "seller",
				TokenMint:      "usd",
				MaxWinners:     3,
				PriceFloorKind: "blinded",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid price floor",
		},
		{
			name: "unknown_floor_kind",
			requestBody: helpers.CreateAuctionRequest{
				Resource:       "res1",
				Authority:      "seller",
				TokenMint:      "usd",
				MaxWinners:     3,
				PriceFloorKind: "mystery",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid price floor",
		},
		{
			name: "missing_resource",
			requestBody: helpers.CreateAuctionRequest{
				Authority:  "seller",
				TokenMint:  "usd",
				MaxWinners: 3,
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "duplicate_resource",
			requestBody: helpers.CreateAuctionRequest{
				Resource:   "res1",
				Authority:  "seller",
				TokenMint:  "usd",
				MaxWinners: 3,
			},
			mockSetup: func() {
				mockService.EXPECT().
					CreateAuction(gomock.Any()).
					Return(model.Handle(""), marketerrors.ErrDataTypeMismatch)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			reqBody, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auctions", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

// Test ClaimBidHandler
func TestClaimBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketServiceInterface(ctrl)
	handler := NewMarketHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auctions/:resource/bids/claim", handler.ClaimBidHandler)

	tests := []struct {
		name           string
		requestBody    helpers.ClaimBidRequest
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success_claim",
			requestBody: helpers.ClaimBidRequest{Authority: "seller", Bidder: "alice", Destination: "seller-token"},
			mockSetup: func() {
				mockService.EXPECT().
					ClaimBid("res1", "seller", "alice", "seller-token").
					Return(uint64(500), nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "bid claimed successfully",
		},
		{
			name:        "auction_not_ended",
			requestBody: helpers.ClaimBidRequest{Authority: "seller", Bidder: "alice", Destination: "seller-token"},
			mockSetup: func() {
				mockService.EXPECT().
					ClaimBid("res1", "seller", "alice", "seller-token").
					Return(uint64(0), marketerrors.ErrAuctionHasNotEnded)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "operation not allowed in current state",
		},
		{
			name:        "wrong_authority",
			requestBody: helpers.ClaimBidRequest{Authority: "mallory", Bidder: "alice", Destination: "m-token"},
			mockSetup: func() {
				mockService.EXPECT().
					ClaimBid("res1", "mallory", "alice", "m-token").
					Return(uint64(0), marketerrors.ErrInvalidAuthority)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "authority mismatch",
		},
		{
			name:        "bidder_not_winner",
			requestBody: helpers.ClaimBidRequest{Authority: "seller", Bidder: "bob", Destination: "seller-token"},
			mockSetup: func() {
				mockService.EXPECT().
					ClaimBid("res1", "seller", "bob", "seller-token").
					Return(uint64(0), marketerrors.ErrWinnerIndexNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "bidder is not a winner",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			reqBody, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auctions/res1/bids/claim", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

// Test GetWinnerHandler
func TestGetWinnerHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockMarketServiceInterface(ctrl)
	handler := NewMarketHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/auctions/:resource/winners/:bidder", handler.GetWinnerHandler)

	tests := []struct {
		name           string
		bidder         string
		mockSetup      func()
		expectedStatus int
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:   "top_winner",
			bidder: "alice",
			mockSetup: func() {
				mockService.EXPECT().IsWinner("res1", "alice").Return(0, true, nil)
			},
			expectedStatus: http.StatusOK,
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, true, data["winner"])
				require.Equal(t, 0.0, data["rank"])
			},
		},
		{
			name:   "not_a_winner",
			bidder: "bob",
			mockSetup: func() {
				mockService.EXPECT().IsWinner("res1", "bob").Return(0, false, nil)
			},
			expectedStatus: http.StatusOK,
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, false, data["winner"])
			},
		},
		{
			name:   "auction_missing",
			bidder: "carol",
			mockSetup: func() {
				mockService.EXPECT().IsWinner("res1", "carol").Return(0, false, marketerrors.ErrAccountNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodGet, "/auctions/res1/winners/"+tc.bidder, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)

			if tc.validateData != nil && w.Code == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				data := resp["data"].(map[string]any)
				tc.validateData(t, data)
			}
		})
	}
}
