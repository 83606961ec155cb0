package domain

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown once on the next render.
type Notice struct {
	Kind    NoticeKind
	Message string
}
