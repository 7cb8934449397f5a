package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"arbscan/internal/domain/entity"
	"arbscan/pkg/errcodes"
	"arbscan/pkg/httpx/reply"
	"arbscan/pkg/httpx/req"
	"arbscan/pkg/rest"
)

type dealRecorder interface {
	Submit(ctx context.Context, deal entity.Deal) (entity.Deal, error)
}

type DealServer struct {
	recorder dealRecorder
}

func NewDealServer(recorder dealRecorder) DealServer {
	return DealServer{
		recorder: recorder,
	}
}

func (s DealServer) postV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.Deal

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := newDomainDeal(request)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainDeal: %w", err),
			failure.WithCode(errcodes.DealRejected),
		)
	}

	if !deal.Opportunity.Viable() {
		return failure.NewInvalidArgumentError(
			"sell leg must clear the buy leg",
			failure.WithCode(errcodes.OpportunityStale),
		)
	}

	recorded, err := s.recorder.Submit(ctx, deal)
	if err != nil {
		return fmt.Errorf("recorder.Submit: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.DealAck{
		Success: true,
		DealID:  recorded.ID,
	})

	return nil
}
