package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-ledger/internal/biddingService"
	model "auction-ledger/internal/models"
	"auction-ledger/internal/repository"
	"auction-ledger/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// testListing builds an active auction item ending in the future.
func testListing(itemID, title string, startingPrice string) model.AuctionItem {
	return model.AuctionItem{
		ItemID:        itemID,
		Title:         title,
		Description:   title + " description",
		StartingPrice: dec(startingPrice),
		AuctionEnd:    time.Now().Add(time.Hour),
		OwnerID:       "owner1",
		Status:        model.ItemActive,
		CreatedAt:     time.Now().UTC(),
	}
}

// SetupTestRouter initializes the router with the in-memory ledger for
// integration testing. Auto-close is off so tests control settlement.
func SetupTestRouter(t *testing.T) *gin.Engine {
	return SetupTestRouterWithItems(t)
}

// SetupTestRouterWithItems initializes the router and seeds the ledger.
func SetupTestRouterWithItems(t *testing.T, items ...model.AuctionItem) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, item := range items {
		if err := repo.AddItem(context.Background(), item); err != nil {
			t.Fatalf("failed to seed item %s: %v", item.ItemID, err)
		}
	}

	service := bidding.NewBiddingService(repo, nil, bidding.Config{AutoClose: false})
	t.Cleanup(service.Stop)

	return server.SetupRouter(service)
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}
