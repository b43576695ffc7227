package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage = "image/"
	ImageDir  = "images"
)

// gin 上下文键
const (
	ContextCurrentUserKey = "currentUser"
	ContextRequestIDKey   = "requestID"
	RequestIDHeader       = "X-Request-ID"
)

const TokenTypeBearer = "bearer"
