package weather

import "strings"

// cityIDs maps lower-cased city names, English and Chinese, to QWeather
// location ids. International entries use the slug QWeather accepts.
var cityIDs = map[string]string{
	"北京": "101010100", "beijing": "101010100",
	"上海": "101020100", "shanghai": "101020100",
	"广州": "101280101", "guangzhou": "101280101",
	"深圳": "101280601", "shenzhen": "101280601",
	"成都": "101270101", "chengdu": "101270101",
	"杭州": "101210101", "hangzhou": "101210101",
	"武汉": "101200101", "wuhan": "101200101",
	"西安": "101110101", "xian": "101110101", "xi'an": "101110101",
	"南京": "101190101", "nanjing": "101190101",
	"天津": "101030100", "tianjin": "101030100",
	"重庆": "101040100", "chongqing": "101040100",
	"苏州": "101190401", "suzhou": "101190401",
	"大连": "101070201", "dalian": "101070201",
	"青岛": "101120201", "qingdao": "101120201",
	"厦门": "101230201", "xiamen": "101230201",
	"郑州": "101180101", "zhengzhou": "101180101",
	"长沙": "101250101", "changsha": "101250101",
	"沈阳": "101070101", "shenyang": "101070101",
	"哈尔滨": "101050101", "harbin": "101050101",
	"昆明": "101290101", "kunming": "101290101",
	"南宁": "101300101", "nanning": "101300101",
	"济南": "101120101", "jinan": "101120101",
	"合肥": "101220101", "hefei": "101220101",
	"太原": "101100101", "taiyuan": "101100101",
	"石家庄": "101090101", "shijiazhuang": "101090101",

	"香港": "101320101", "hong kong": "101320101", "hongkong": "101320101",
	"澳门": "101330101", "macau": "101330101", "macao": "101330101",
	"台北": "101340101", "taipei": "101340101",

	"纽约": "newyork", "new york": "newyork",
	"伦敦": "london", "london": "london",
	"东京": "tokyo", "tokyo": "tokyo",
	"巴黎": "paris", "paris": "paris",
	"悉尼": "sydney", "sydney": "sydney",
	"新加坡": "singapore", "singapore": "singapore",
	"首尔": "seoul", "seoul": "seoul",
	"曼谷": "bangkok", "bangkok": "bangkok",
	"莫斯科": "moscow", "moscow": "moscow",
	"柏林": "berlin", "berlin": "berlin",
	"罗马": "rome", "rome": "rome",
	"马德里": "madrid", "madrid": "madrid",
	"多伦多": "toronto", "toronto": "toronto",
	"洛杉矶": "losangeles", "los angeles": "losangeles", "losangeles": "losangeles", "la": "losangeles",
	"旧金山": "sanfrancisco", "san francisco": "sanfrancisco", "sanfrancisco": "sanfrancisco",
	"芝加哥": "chicago", "chicago": "chicago",
	"华盛顿": "washington", "washington": "washington", "washington dc": "washington",
}

// LookupCity returns the built-in location id for name.
func LookupCity(name string) (string, bool) {
	id, ok := cityIDs[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}
