package service

// MatchChain — политика сравнения сетей: только точное совпадение.
// OKX отдаёт сеть в составном виде "<CCY>-<NETWORK>" (USDT-TRC20), поэтому
// запрошенная сеть совпадает либо с полем целиком, либо с "<currency>-<requested>".
// Поиск подстроки не используется: TRC20 не совпадает с USDT-TRC20-OLD.
func MatchChain(listed, currency, requested string) bool {
	if requested == "" {
		return false
	}
	return listed == requested || listed == currency+"-"+requested
}
