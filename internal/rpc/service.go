package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// ReceiptServiceName is the fully-qualified name of the receipt service.
const ReceiptServiceName = "roomsplit.v1.ReceiptService"

// Procedure paths of ReceiptService.
const (
	ReceiptServiceCreateReceiptProcedure           = "/roomsplit.v1.ReceiptService/CreateReceipt"
	ReceiptServiceCreateParticipantsProcedure      = "/roomsplit.v1.ReceiptService/CreateParticipants"
	ReceiptServiceGetReceiptProcedure              = "/roomsplit.v1.ReceiptService/GetReceipt"
	ReceiptServiceListParticipantsProcedure        = "/roomsplit.v1.ReceiptService/ListParticipants"
	ReceiptServiceUpdateReceiptTotalProcedure      = "/roomsplit.v1.ReceiptService/UpdateReceiptTotal"
	ReceiptServiceUpdateParticipantAmountProcedure = "/roomsplit.v1.ReceiptService/UpdateParticipantAmount"
	ReceiptServiceComputeAllocationProcedure       = "/roomsplit.v1.ReceiptService/ComputeAllocation"
)

// ReceiptServiceHandler is implemented by the server side of ReceiptService.
type ReceiptServiceHandler interface {
	CreateReceipt(context.Context, *connect.Request[CreateReceiptRequest]) (*connect.Response[CreateReceiptResponse], error)
	CreateParticipants(context.Context, *connect.Request[CreateParticipantsRequest]) (*connect.Response[CreateParticipantsResponse], error)
	GetReceipt(context.Context, *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error)
	ListParticipants(context.Context, *connect.Request[ListParticipantsRequest]) (*connect.Response[ListParticipantsResponse], error)
	UpdateReceiptTotal(context.Context, *connect.Request[UpdateReceiptTotalRequest]) (*connect.Response[UpdateReceiptTotalResponse], error)
	UpdateParticipantAmount(context.Context, *connect.Request[UpdateParticipantAmountRequest]) (*connect.Response[UpdateParticipantAmountResponse], error)
	ComputeAllocation(context.Context, *connect.Request[ComputeAllocationRequest]) (*connect.Response[ComputeAllocationResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler serving every ReceiptService
// procedure. It returns the path prefix to mount the handler on.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	routes := map[string]http.Handler{
		ReceiptServiceCreateReceiptProcedure:           connect.NewUnaryHandler(ReceiptServiceCreateReceiptProcedure, svc.CreateReceipt, opts...),
		ReceiptServiceCreateParticipantsProcedure:      connect.NewUnaryHandler(ReceiptServiceCreateParticipantsProcedure, svc.CreateParticipants, opts...),
		ReceiptServiceGetReceiptProcedure:              connect.NewUnaryHandler(ReceiptServiceGetReceiptProcedure, svc.GetReceipt, opts...),
		ReceiptServiceListParticipantsProcedure:        connect.NewUnaryHandler(ReceiptServiceListParticipantsProcedure, svc.ListParticipants, opts...),
		ReceiptServiceUpdateReceiptTotalProcedure:      connect.NewUnaryHandler(ReceiptServiceUpdateReceiptTotalProcedure, svc.UpdateReceiptTotal, opts...),
		ReceiptServiceUpdateParticipantAmountProcedure: connect.NewUnaryHandler(ReceiptServiceUpdateParticipantAmountProcedure, svc.UpdateParticipantAmount, opts...),
		ReceiptServiceComputeAllocationProcedure:       connect.NewUnaryHandler(ReceiptServiceComputeAllocationProcedure, svc.ComputeAllocation, opts...),
	}

	return "/" + ReceiptServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// ReceiptServiceClient calls ReceiptService over Connect.
type ReceiptServiceClient struct {
	createReceipt           *connect.Client[CreateReceiptRequest, CreateReceiptResponse]
	createParticipants      *connect.Client[CreateParticipantsRequest, CreateParticipantsResponse]
	getReceipt              *connect.Client[GetReceiptRequest, GetReceiptResponse]
	listParticipants        *connect.Client[ListParticipantsRequest, ListParticipantsResponse]
	updateReceiptTotal      *connect.Client[UpdateReceiptTotalRequest, UpdateReceiptTotalResponse]
	updateParticipantAmount *connect.Client[UpdateParticipantAmountRequest, UpdateParticipantAmountResponse]
	computeAllocation       *connect.Client[ComputeAllocationRequest, ComputeAllocationResponse]
}

// NewReceiptServiceClient creates a client for the server at baseURL
// (e.g. http://localhost:8080).
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)

	return &ReceiptServiceClient{
		createReceipt:           connect.NewClient[CreateReceiptRequest, CreateReceiptResponse](httpClient, baseURL+ReceiptServiceCreateReceiptProcedure, opts...),
		createParticipants:      connect.NewClient[CreateParticipantsRequest, CreateParticipantsResponse](httpClient, baseURL+ReceiptServiceCreateParticipantsProcedure, opts...),
		getReceipt:              connect.NewClient[GetReceiptRequest, GetReceiptResponse](httpClient, baseURL+ReceiptServiceGetReceiptProcedure, opts...),
		listParticipants:        connect.NewClient[ListParticipantsRequest, ListParticipantsResponse](httpClient, baseURL+ReceiptServiceListParticipantsProcedure, opts...),
		updateReceiptTotal:      connect.NewClient[UpdateReceiptTotalRequest, UpdateReceiptTotalResponse](httpClient, baseURL+ReceiptServiceUpdateReceiptTotalProcedure, opts...),
		updateParticipantAmount: connect.NewClient[UpdateParticipantAmountRequest, UpdateParticipantAmountResponse](httpClient, baseURL+ReceiptServiceUpdateParticipantAmountProcedure, opts...),
		computeAllocation:       connect.NewClient[ComputeAllocationRequest, ComputeAllocationResponse](httpClient, baseURL+ReceiptServiceComputeAllocationProcedure, opts...),
	}
}

func (c *ReceiptServiceClient) CreateReceipt(ctx context.Context, req *connect.Request[CreateReceiptRequest]) (*connect.Response[CreateReceiptResponse], error) {
	return c.createReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) CreateParticipants(ctx context.Context, req *connect.Request[CreateParticipantsRequest]) (*connect.Response[CreateParticipantsResponse], error) {
	return c.createParticipants.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ListParticipants(ctx context.Context, req *connect.Request[ListParticipantsRequest]) (*connect.Response[ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) UpdateReceiptTotal(ctx context.Context, req *connect.Request[UpdateReceiptTotalRequest]) (*connect.Response[UpdateReceiptTotalResponse], error) {
	return c.updateReceiptTotal.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) UpdateParticipantAmount(ctx context.Context, req *connect.Request[UpdateParticipantAmountRequest]) (*connect.Response[UpdateParticipantAmountResponse], error) {
	return c.updateParticipantAmount.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ComputeAllocation(ctx context.Context, req *connect.Request[ComputeAllocationRequest]) (*connect.Response[ComputeAllocationResponse], error) {
	return c.computeAllocation.CallUnary(ctx, req)
}
