package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestFileDescriptor_Service(t *testing.T) {
	svc := File_internal_proto_auth_proto.Services().ByName("AuthService")
	require.NotNil(t, svc)
	assert.Equal(t, protoreflect.FullName("gophauth.v1.AuthService"), svc.FullName())
	assert.Equal(t, string(svc.FullName()), AuthService_ServiceDesc.ServiceName)

	methods := svc.Methods()
	require.Equal(t, len(AuthService_ServiceDesc.Methods), methods.Len())
	for _, m := range AuthService_ServiceDesc.Methods {
		assert.NotNil(t, methods.ByName(protoreflect.Name(m.MethodName)), m.MethodName)
	}

	login := methods.ByName("Login")
	assert.Equal(t, (&LoginRequest{}).ProtoReflect().Descriptor(), login.Input())
	assert.Equal(t, (&LoginResponse{}).ProtoReflect().Descriptor(), login.Output())
}

func TestFullMethodNames(t *testing.T) {
	assert.Equal(t, "/gophauth.v1.AuthService/Login", AuthService_Login_FullMethodName)
	assert.Equal(t, "/gophauth.v1.AuthService/GetResetPasswordToken", AuthService_GetResetPasswordToken_FullMethodName)
}

func TestFieldNumbers(t *testing.T) {
	tests := []struct {
		msg    proto.Message
		field  protoreflect.Name
		number protoreflect.FieldNumber
		json   string
	}{
		{&LoginResponse{}, "session_id", 3, "sessionId"},
		{&ResetPasswordTokenResponse{}, "reset_token", 2, "resetToken"},
		{&UpdatePasswordRequest{}, "new_password", 3, "newPassword"},
		{&RegisterRequest{}, "password", 2, "password"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			fd := tt.msg.ProtoReflect().Descriptor().Fields().ByName(tt.field)
			require.NotNil(t, fd)
			assert.Equal(t, tt.number, fd.Number())
			assert.Equal(t, protoreflect.StringKind, fd.Kind())
			assert.Equal(t, tt.json, fd.JSONName())
		})
	}
}

func TestGettersOnNil(t *testing.T) {
	var resp *LoginResponse
	assert.Empty(t, resp.GetSessionId())
	assert.Empty(t, resp.GetEmail())
}

func TestWireRoundTrip(t *testing.T) {
	in := &UpdatePasswordRequest{Email: "a@x.com", ResetToken: "rt", NewPassword: "pw"}
	b, err := proto.Marshal(in)
	require.NoError(t, err)

	out := &UpdatePasswordRequest{}
	require.NoError(t, proto.Unmarshal(b, out))
	assert.True(t, proto.Equal(in, out))
}
