package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"detector/internal/detector"
	mockdetector "detector/internal/detector/mock"
	"detector/internal/worker"
	"detector/pkg/domain"
	"detector/pkg/logger"
	"detector/pkg/serrors"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func makeJob(id int64, itemID string) *river.Job[detector.JobArgs] {
	return &river.Job[detector.JobArgs]{
		JobRow: &rivertype.JobRow{ID: id},
		Args:   detector.JobArgs{ItemID: itemID},
	}
}

func TestAnalyzeWorker_Work_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mock := mockdetector.NewMockService(ctrl)
	w := worker.NewAnalyzeWorker(mock)

	id := uuid.New()
	mock.EXPECT().Process(gomock.Any(), domain.ItemID(id)).
		Return(&domain.Item{ID: domain.ItemID(id), Status: domain.ItemStatusCompleted}, nil)

	require.NoError(t, w.Work(context.Background(), makeJob(1, id.String())))
}

func TestAnalyzeWorker_Work_Cancels(t *testing.T) {
	for name, procErr := range map[string]error{
		"not found": serrors.With(serrors.ErrNotFound, "item not found"),
		"conflict":  serrors.With(serrors.ErrConflict, "item is already completed"),
	} {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mock := mockdetector.NewMockService(ctrl)
			w := worker.NewAnalyzeWorker(mock)

			mock.EXPECT().Process(gomock.Any(), gomock.Any()).Return(nil, procErr)

			err := w.Work(context.Background(), makeJob(2, uuid.NewString()))
			var cancelErr *river.JobCancelError
			require.ErrorAs(t, err, &cancelErr)
		})
	}
}

func TestAnalyzeWorker_Work_InvalidItemID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mockdetector.NewMockService(ctrl)
	w := worker.NewAnalyzeWorker(mock)

	err := w.Work(context.Background(), makeJob(3, "not-a-uuid"))
	var cancelErr *river.JobCancelError
	require.ErrorAs(t, err, &cancelErr)
}

func TestAnalyzeWorker_Work_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mockdetector.NewMockService(ctrl)
	w := worker.NewAnalyzeWorker(mock)

	mock.EXPECT().Process(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	err := w.Work(context.Background(), makeJob(4, uuid.NewString()))
	require.Error(t, err)
	var cancelErr *river.JobCancelError
	require.False(t, errors.As(err, &cancelErr))
}
