package fixed

// DecodePayload converts the raw bits of a message payload encoded in the
// payload format into a value in the target format, reproducing how the
// hardware reads payloads.
//
// The receiving side has no notion of an unsigned payload: it reads the bits
// as a two's complement number of the same width. A payload whose top bit is
// set therefore decodes as negative, and the hardware compensates by adding
// 1.0 in the target format. The compensation is exact only for pure-fraction
// payloads (such as U032); wider payload formats keep the error, as the
// hardware does.
func DecodePayload(bits uint64, payload, target Format) Value {
	signed := Format{TotalBits: payload.TotalBits, FracBits: payload.FracBits, Signed: true}
	apparent := FromRaw(int64(bits), signed)

	decoded := apparent.Convert(target)
	if apparent.IsNegative() {
		decoded = decoded.Add(One(target))
	}
	return decoded
}

// EncodePayload converts v to the payload format and zeroes the low
// truncateBits bits, returning the bits that would be put on the wire.
func EncodePayload(v Value, payload Format, truncateBits uint) uint64 {
	return v.Convert(payload).TruncateLowBits(truncateBits).Bits()
}
