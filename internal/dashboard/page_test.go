package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cherryblossom/internal/results"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestPageHandler_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := results.NewMockRepository(ctrl)
	handler := NewPageHandler(NewService(mockRepo))

	t.Run("renders charts and table", func(t *testing.T) {
		mockRepo.EXPECT().CurrentDatasets(gomock.Any()).Return([]results.Dataset{{Year: 2019}}, nil)
		mockRepo.EXPECT().All(gomock.Any(), results.Query{Years: []int{2019}}).Return(sampleRecords(), nil)
		mockRepo.EXPECT().All(gomock.Any(), results.Query{}).Return(sampleRecords(), nil)

		w := httptest.NewRecorder()
		handler.Dashboard(w, httptest.NewRequest(http.MethodGet, "/?year=2019", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Jane Runner")
		assert.Contains(t, body, `<rect class="bar"`)
		assert.Contains(t, body, "<polyline")
		assert.Contains(t, body, `value="2019" checked`)
		assert.Contains(t, body, "/v1/export.csv?year=2019")
	})

	t.Run("invalid filter resets and reports", func(t *testing.T) {
		mockRepo.EXPECT().CurrentDatasets(gomock.Any()).Return(nil, nil)
		mockRepo.EXPECT().All(gomock.Any(), results.Query{}).Return(nil, nil).Times(2)

		w := httptest.NewRecorder()
		handler.Dashboard(w, httptest.NewRequest(http.MethodGet, "/?gender=Q", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "gender must be one of")
		assert.Contains(t, w.Body.String(), "No results match these filters.")
	})
}
