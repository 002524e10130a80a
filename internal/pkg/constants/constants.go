package constants

// Cassandra 后端的两个等价入口。
// 主入口走 CloudFlare 的 HTTPS；当域名在本机解析为回环地址时
// (服务端内部自调用的场景)，改走备用的纯 HTTP 入口。
const (
	HostAPIURL          = "https://www.dabory.com/cassandra/api/v1" // 结尾不加斜杠
	AlternateHostAPIURL = "http://www.dabory.com/cassandra/api/v1"
	LoopbackIPAddress   = "127.0.0.1"
)

// 远端资源路径。
const (
	PathAuthActivate    = "/auth/activate/"
	PathAuthVerify      = "/auth/verify/"
	PathAuthIssue       = "/auth/issue/"
	PathAuthOrderItems  = "/auth/order-items/" // + "{id}/", + "user/{id}/"
	PathOrderItemDelete = "/order-items/"      // + "{id}/", DELETE
	PathLogsSales       = "/logs/sales/"
	PathLogsAddToCarts  = "/logs/add-to-carts/"
	PathLogsTodaySeen   = "/logs/today-seen/"
	PathLogsWishLists   = "/logs/wish-lists/"
	PathPosts           = "/posts/"
)

// OptionStore 里使用的键名。
const (
	OptionCassandraIPAddress  = "wskl_cassandra_ip_address"
	OptionDevelopCassandraURL = "wskl_develop_cassandra_url"
)
