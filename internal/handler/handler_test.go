package handler

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/reco-service/internal/domain"
	"github.com/actuallystonmai/reco-service/internal/model"
	"github.com/actuallystonmai/reco-service/internal/repository"
	"github.com/actuallystonmai/reco-service/internal/service"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store, err := repository.NewRatingStore(
		[]domain.ItemRating{
			{ItemID: 100, Views: 500, Rank: 1, Title: "Alpha"},
			{ItemID: 200, Views: 300, Rank: 2, Title: "Beta"},
			{ItemID: 300, Views: 200, Rank: 3, Title: "Gamma"},
			{ItemID: 400, Views: 100, Rank: 4, Title: "Delta"},
			{ItemID: 500, Views: 10, Rank: 5, Title: "Epsilon"},
		},
		[]int64{1, 2, 3, 123},
	)
	require.NoError(t, err)

	als, err := model.NewALS(model.ALSModel, &model.Artifact{
		Factors:        2,
		Regularization: 0.1,
		Alpha:          1,
		UserIDs:        []int64{1, 2, 3},
		ItemIDs:        []int64{100, 200, 300, 400},
		UserFactors:    [][]float64{{1, 0}, {0, 1}, {0.5, 0.5}},
		ItemFactors:    [][]float64{{1, 0}, {0, 1}, {0.9, 0.1}, {0.1, 0.9}},
	}, []model.Interaction{
		{UserID: 1, ItemID: 100, Weight: 1},
		{UserID: 2, ItemID: 200, Weight: 1},
		{UserID: 2, ItemID: 400, Weight: 2},
	}, []int64{400, 300, 100})
	require.NoError(t, err)

	registry, err := model.NewRegistry(model.NewRandom(model.RandomModel, nil, 42), als)
	require.NoError(t, err)

	h := NewHandler(service.NewService(registry, store, nil, nil, 10))

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/models", h.ListModels)
	r.Get("/reco/{model_name}", h.GetBatchRecommendations)
	r.Get("/reco/{model_name}/{user_id}", h.GetRecommendations)
	r.Get("/explain/{model_name}/{user_id}/{item_id}", h.Explain)
	return r
}

func errorBody(key, message string, loc ...string) string {
	data, _ := json.Marshal(ErrorResponse{Errors: []ErrorDetail{{
		ErrorKey:     key,
		ErrorMessage: message,
		ErrorLoc:     loc,
	}}})
	return string(data)
}

func TestHealth(t *testing.T) {
	apitest.New().
		Handler(newTestHandler(t)).
		Get("/health").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"health":"I am alive. Everything is OK!"}`).
		End()
}

func TestListModels(t *testing.T) {
	apitest.New().
		Handler(newTestHandler(t)).
		Get("/models").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"models":["als","random"]}`).
		End()
}

func TestGetRecommendationsRandom(t *testing.T) {
	apitest.New().
		Handler(newTestHandler(t)).
		Get("/reco/random/123").
		Expect(t).
		Status(http.StatusOK).
		Header("Content-Type", "application/json").
		Assert(func(res *http.Response, _ *http.Request) error {
			body, err := io.ReadAll(res.Body)
			if err != nil {
				return err
			}
			var reco RecoResponse
			if err := json.Unmarshal(body, &reco); err != nil {
				return err
			}
			if reco.UserID != 123 {
				return fmt.Errorf("user_id = %d", reco.UserID)
			}
			if len(reco.Items) != 10 {
				return fmt.Errorf("got %d items", len(reco.Items))
			}
			seen := make(map[int64]struct{}, len(reco.Items))
			for _, id := range reco.Items {
				if _, dup := seen[id]; dup {
					return fmt.Errorf("duplicate item %d", id)
				}
				seen[id] = struct{}{}
			}
			return nil
		}).
		End()
}

func TestGetRecommendationsALS(t *testing.T) {
	h := newTestHandler(t)

	apitest.New().
		Handler(h).
		Get("/reco/als/1").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user_id":1,"items":[300,400,200]}`).
		End()

	apitest.New().
		Handler(h).
		Get("/reco/als/123").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user_id":123,"items":[400,300,100]}`).
		End()
}

func TestGetRecommendationsErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{
			name:   "unknown model",
			path:   "/reco/unknown_model/1",
			status: http.StatusNotFound,
			body:   errorBody("model_not_found", "Model unknown_model not found"),
		},
		{
			name:   "unknown user",
			path:   "/reco/als/999",
			status: http.StatusNotFound,
			body:   errorBody("user_not_found", "User 999 not found"),
		},
		{
			name:   "sentinel user",
			path:   "/reco/random/1000000001",
			status: http.StatusNotFound,
			body:   errorBody("user_not_found", "User 1000000001 not found"),
		},
		{
			name:   "malformed user",
			path:   "/reco/als/abc",
			status: http.StatusUnprocessableEntity,
			body:   errorBody("validation_error", "user_id must be an integer", "path", "user_id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apitest.New().
				Handler(newTestHandler(t)).
				Get(tt.path).
				Expect(t).
				Status(tt.status).
				Body(tt.body).
				End()
		})
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "cold user",
			path: "/explain/als/123/200",
			body: `{"p":71,"explanation":"Movie/series 'Beta' may interest you with probability 71% because 300 users of the service have already watched it and it is ranked 2 in our top"}`,
		},
		{
			name: "warm user",
			path: "/explain/als/1/300",
			body: `{"p":47,"explanation":"Movie/series 'Gamma' may interest you with probability 47% because you watched 'Alpha'"}`,
		},
		{
			name: "already seen",
			path: "/explain/als/1/100",
			body: `{"p":53,"explanation":"Movie/series 'Alpha' may interest you because you have already watched it"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apitest.New().
				Handler(newTestHandler(t)).
				Get(tt.path).
				Expect(t).
				Status(http.StatusOK).
				Body(tt.body).
				End()
		})
	}
}

func TestExplainErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{
			name:   "unknown model",
			path:   "/explain/unknown_model/1/100",
			status: http.StatusNotFound,
			body:   errorBody("model_not_found", "Model unknown_model not found"),
		},
		{
			name:   "unknown user",
			path:   "/explain/als/999/100",
			status: http.StatusNotFound,
			body:   errorBody("user_not_found", "User 999 not found"),
		},
		{
			name:   "unknown item",
			path:   "/explain/als/1/999",
			status: http.StatusNotFound,
			body:   errorBody("item_not_found", "Item 999 not found"),
		},
		{
			name:   "random cannot explain",
			path:   "/explain/random/1/100",
			status: http.StatusNotFound,
			body:   errorBody("not_implemented", "Model random does not support this operation"),
		},
		{
			name:   "malformed item",
			path:   "/explain/als/1/x",
			status: http.StatusUnprocessableEntity,
			body:   errorBody("validation_error", "item_id must be an integer", "path", "item_id"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apitest.New().
				Handler(newTestHandler(t)).
				Get(tt.path).
				Expect(t).
				Status(tt.status).
				Body(tt.body).
				End()
		})
	}
}

func TestGetBatchRecommendations(t *testing.T) {
	h := newTestHandler(t)

	apitest.New().
		Handler(h).
		Get("/reco/als").
		QueryParams(map[string]string{"page": "2", "limit": "3"}).
		Expect(t).
		Status(http.StatusOK).
		Assert(func(res *http.Response, _ *http.Request) error {
			var batch domain.BatchResponse
			if err := json.NewDecoder(res.Body).Decode(&batch); err != nil {
				return err
			}
			if batch.TotalUsers != 4 || len(batch.Results) != 1 || batch.Results[0].UserID != 123 {
				return fmt.Errorf("unexpected batch %+v", batch)
			}
			return nil
		}).
		End()

	apitest.New().
		Handler(h).
		Get("/reco/als").
		Query("limit", "500").
		Expect(t).
		Status(http.StatusUnprocessableEntity).
		Body(errorBody("validation_error", "limit must be an integer between 1 and 100", "query", "limit")).
		End()

	apitest.New().
		Handler(h).
		Get("/reco/nope").
		Expect(t).
		Status(http.StatusNotFound).
		Body(errorBody("model_not_found", "Model nope not found")).
		End()
}
