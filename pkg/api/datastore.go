package api

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName         = "datastore.Datastore"
	StoreDataFullMethod = "/" + serviceName + "/StoreData"
	ListDataFullMethod  = "/" + serviceName + "/ListData"
)

// DatastoreClient defines the gRPC client interface for the datastore service.
type DatastoreClient interface {
	StoreData(ctx context.Context, in *StoreDataRequest, opts ...grpc.CallOption) (*StoreDataResponse, error)
	ListData(ctx context.Context, in *ListDataRequest, opts ...grpc.CallOption) (*ListDataResponse, error)
}

type datastoreClient struct {
	cc grpc.ClientConnInterface
}

// NewDatastoreClient creates a client that always speaks the JSON codec, whatever the connection defaults are.
func NewDatastoreClient(cc grpc.ClientConnInterface) DatastoreClient {
	return &datastoreClient{cc: cc}
}

func (c *datastoreClient) StoreData(ctx context.Context, in *StoreDataRequest, opts ...grpc.CallOption) (*StoreDataResponse, error) {
	out := new(StoreDataResponse)
	if err := c.cc.Invoke(ctx, StoreDataFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datastoreClient) ListData(ctx context.Context, in *ListDataRequest, opts ...grpc.CallOption) (*ListDataResponse, error) {
	out := new(ListDataResponse)
	if err := c.cc.Invoke(ctx, ListDataFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
}

// DatastoreServer defines the gRPC interface for the datastore service.
type DatastoreServer interface {
	StoreData(context.Context, *StoreDataRequest) (*StoreDataResponse, error)
	ListData(context.Context, *ListDataRequest) (*ListDataResponse, error)
}

// UnimplementedDatastoreServer can be embedded to provide default unimplemented behaviour.
type UnimplementedDatastoreServer struct{}

func (UnimplementedDatastoreServer) StoreData(context.Context, *StoreDataRequest) (*StoreDataResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method StoreData not implemented")
}

func (UnimplementedDatastoreServer) ListData(context.Context, *ListDataRequest) (*ListDataResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListData not implemented")
}

// RegisterDatastoreServer registers the service implementation with the provided registrar.
func RegisterDatastoreServer(s grpc.ServiceRegistrar, srv DatastoreServer) {
	s.RegisterService(&Datastore_ServiceDesc, srv)
}

// Datastore_ServiceDesc describes the datastore service for the gRPC server.
var Datastore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DatastoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StoreData",
			Handler:    _Datastore_StoreData_Handler,
		},
		{
			MethodName: "ListData",
			Handler:    _Datastore_ListData_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "datastore.json",
}

func _Datastore_StoreData_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(StoreDataRequest)
	if dec != nil {
		if err := dec(in); err != nil {
			return nil, err
		}
	}
	if interceptor == nil {
		return srv.(DatastoreServer).StoreData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: StoreDataFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatastoreServer).StoreData(ctx, req.(*StoreDataRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Datastore_ListData_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListDataRequest)
	if dec != nil {
		if err := dec(in); err != nil {
			return nil, err
		}
	}
	if interceptor == nil {
		return srv.(DatastoreServer).ListData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListDataFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatastoreServer).ListData(ctx, req.(*ListDataRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// StoreDataRequest asks the service to ingest one document.
type StoreDataRequest struct {
	Filename string `json:"filename"`
}

func (x *StoreDataRequest) GetFilename() string {
	if x == nil {
		return ""
	}
	return x.Filename
}

type StoreDataResponse struct{}

type ListDataRequest struct{}

// ListDataResponse carries every stored row in the REST representation.
type ListDataResponse struct {
	Rows []MeasurementRow `json:"rows"`
}

func (x *ListDataResponse) GetRows() []MeasurementRow {
	if x == nil {
		return nil
	}
	return x.Rows
}

// MeasurementRow is one stored reading. Absent readings and dates are null.
type MeasurementRow struct {
	CompostTemp *json.Number `json:"compostTemp"`
	RoomTemp    *json.Number `json:"roomTemp"`
	CO2         *json.Number `json:"co2"`
	RH          *json.Number `json:"rh"`
	// Date is formatted as "Mon, 02 Jan 2006 15:04:05 GMT".
	Date *string `json:"date"`
}

func (x *MeasurementRow) GetCompostTemp() string {
	if x == nil {
		return ""
	}
	return numberString(x.CompostTemp)
}

func (x *MeasurementRow) GetRoomTemp() string {
	if x == nil {
		return ""
	}
	return numberString(x.RoomTemp)
}

func (x *MeasurementRow) GetCO2() string {
	if x == nil {
		return ""
	}
	return numberString(x.CO2)
}

func (x *MeasurementRow) GetRH() string {
	if x == nil {
		return ""
	}
	return numberString(x.RH)
}

func (x *MeasurementRow) GetDate() string {
	if x == nil || x.Date == nil {
		return ""
	}
	return *x.Date
}

func numberString(n *json.Number) string {
	if n == nil {
		return ""
	}
	return n.String()
}
