package loggers

const (
	FieldApp        = "app"
	FieldComponent  = "component"
	FieldHttpMethod = "http_method"
	FieldHttpPath   = "http_path"
	FieldHttpStatus = "http_status"

	FieldDuration   = "duration"
	FieldRequestID  = "request_id"
	FieldErrorStack = "error_stack"
	FieldErrorCode  = "error_code"

	FieldPartitionId = "partition_id"
	FieldShardID     = "shard_id"
	FieldBucketID    = "bucket_id"

	FieldRunID      = "run_id"
	FieldResolution = "resolution"
	FieldWindows    = "windows"
	FieldRecords    = "records"
	FieldRejected   = "rejected"
)
