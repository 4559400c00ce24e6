package cache

const (
	CacheVersion = "v1"
	// ProxyResponseKeyPattern holds cached outbound responses, keyed by request hash.
	ProxyResponseKeyPattern = CacheVersion + ":proxy:response:%s"
	SkillHealthKey          = CacheVersion + ":skill:health:%s"
	SkillDeployLockKey      = "skill:deploy:lock:%s"
)
