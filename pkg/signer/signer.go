// Package signer 百度翻译接口签名
package signer

import (
	"crypto/md5"
	"encoding/hex"
)

// Sign 返回消息 UTF-8 字节的小写十六进制 MD5
func Sign(message string) string {
	sum := md5.Sum([]byte(message))
	return hex.EncodeToString(sum[:])
}

// BaiduSign 按官方文档拼接 appid + q + salt + 密钥 后签名
func BaiduSign(appID, query, salt, secretKey string) string {
	return Sign(appID + query + salt + secretKey)
}
