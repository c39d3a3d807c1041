package gemini

import "context"

type disabled struct{ reason error }

// Disabled returns a client whose every call fails with reason.
func Disabled(reason error) Client { return disabled{reason: reason} }

func (d disabled) UploadFile(context.Context, string, string) (*RemoteFile, error) {
	return nil, d.reason
}
func (d disabled) GetFile(context.Context, string) (*RemoteFile, error) { return nil, d.reason }
func (d disabled) DeleteFile(context.Context, string) error             { return d.reason }
func (d disabled) GenerateText(context.Context, string, Request) (string, error) {
	return "", d.reason
}
func (d disabled) Close() error { return nil }
