package handler

import (
	"context"

	"google.golang.org/grpc"
)

const attendanceServiceName = "attendance.v1.AttendanceService"

// AttendanceServiceServer は attendance.v1.AttendanceService のサーバー実装が満たすインターフェースです。
type AttendanceServiceServer interface {
	ProcessScan(ctx context.Context, req *ProcessScanRequest) (*ProcessScanResponse, error)
	GetAttendanceDaily(ctx context.Context, req *GetAttendanceDailyRequest) (*GetAttendanceDailyResponse, error)
	ListAttendanceDaily(ctx context.Context, req *ListAttendanceDailyRequest) (*ListAttendanceDailyResponse, error)
	ListScanEvents(ctx context.Context, req *ListScanEventsRequest) (*ListScanEventsResponse, error)
}

// AttendanceServiceDesc は AttendanceService の grpc.ServiceDesc です。
var AttendanceServiceDesc = grpc.ServiceDesc{
	ServiceName: attendanceServiceName,
	HandlerType: (*AttendanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProcessScan",
			Handler:    unaryHandler("ProcessScan", AttendanceServiceServer.ProcessScan),
		},
		{
			MethodName: "GetAttendanceDaily",
			Handler:    unaryHandler("GetAttendanceDaily", AttendanceServiceServer.GetAttendanceDaily),
		},
		{
			MethodName: "ListAttendanceDaily",
			Handler:    unaryHandler("ListAttendanceDaily", AttendanceServiceServer.ListAttendanceDaily),
		},
		{
			MethodName: "ListScanEvents",
			Handler:    unaryHandler("ListScanEvents", AttendanceServiceServer.ListScanEvents),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAttendanceServiceServer は srv を gRPC サーバーへ登録します。
func RegisterAttendanceServiceServer(s grpc.ServiceRegistrar, srv AttendanceServiceServer) {
	s.RegisterService(&AttendanceServiceDesc, srv)
}

// FullMethodName は AttendanceService のメソッドのフルパスを返します。
func FullMethodName(method string) string {
	return "/" + attendanceServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(AttendanceServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AttendanceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethodName(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AttendanceServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
