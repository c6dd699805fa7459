package constants

// Redis键常量
// 键格式统一为 tenant:{tenant_id}:业务段:... 以便后续多租户扩展
const (
	// TenantPlaceholder 租户占位符，由 Redis.FormatKey 替换
	TenantPlaceholder = "{tenant_id}"

	// KeyRawFileMD5Set 已上传原始文件的MD5集合，用于跳过重复上传
	KeyRawFileMD5Set = "tenant:" + TenantPlaceholder + ":dedup:raw_file_md5_set"
)
