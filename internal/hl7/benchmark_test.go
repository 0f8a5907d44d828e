package hl7

import "testing"

func BenchmarkDecodeWish(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DecodeWish(wishAdmission)
	}
}

func BenchmarkDecodeORLine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DecodeORLine(orlineScheduled)
	}
}

func BenchmarkTokenize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Tokenize(orlineScheduled)
	}
}
