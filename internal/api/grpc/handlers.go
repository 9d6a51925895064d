package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mushroom-datastore/internal/domain"
	"mushroom-datastore/pkg/api"
)

// Handler implements the gRPC DatastoreServer on top of the application service.
type Handler struct {
	api.UnimplementedDatastoreServer

	service domain.DatastoreService
}

func NewHandler(service domain.DatastoreService) *Handler {
	return &Handler{service: service}
}

// StoreData ingests the requested document.
func (h *Handler) StoreData(ctx context.Context, req *api.StoreDataRequest) (*api.StoreDataResponse, error) {
	filename := req.GetFilename()
	if strings.TrimSpace(filename) == "" {
		return nil, status.Error(codes.InvalidArgument, "filename is required")
	}
	if h == nil || h.service == nil {
		return nil, status.Error(codes.Internal, "service is not configured")
	}

	if err := h.service.Ingest(ctx, filename); err != nil {
		return nil, toStatus(err)
	}

	return &api.StoreDataResponse{}, nil
}

// ListData returns every stored row.
func (h *Handler) ListData(ctx context.Context, _ *api.ListDataRequest) (*api.ListDataResponse, error) {
	if h == nil || h.service == nil {
		return nil, status.Error(codes.Internal, "service is not configured")
	}

	rows, err := h.service.ListAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	wire := make([]api.MeasurementRow, 0, len(rows))
	for _, row := range rows {
		wire = append(wire, toWireRow(row))
	}

	return &api.ListDataResponse{Rows: wire}, nil
}

func toWireRow(row domain.MeasurementRow) api.MeasurementRow {
	out := api.MeasurementRow{
		CompostTemp: wireNumber(row.CompostTemp),
		RoomTemp:    wireNumber(row.RoomTemp),
		CO2:         wireNumber(row.CO2),
		RH:          wireNumber(row.RH),
	}
	if !row.Date.IsZero() {
		date := row.Date.String()
		out.Date = &date
	}
	return out
}

func wireNumber(d domain.Decimal) *json.Number {
	if !d.Valid() {
		return nil
	}
	n := json.Number(d.String())
	return &n
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrUpstreamMalformedResponse):
		return status.Errorf(codes.Unavailable, "upstream parser: %v", err)
	default:
		return status.Errorf(codes.Internal, "datastore: %v", err)
	}
}

var _ api.DatastoreServer = (*Handler)(nil)
