// Package crypto decides which document fields go through the cipher service
// and how their values are shaped on the way in and out.
//
// The package never encrypts anything itself. It collects [BatchItem] values
// from documents, and writes the cipher service's results back:
//
//	items, err := crypto.CollectEncryptionTargets(doc, spec)
//	out, err := vault.EncryptBatch(ctx, crypto.Values(items))
//	err = crypto.ApplyEncryptedBatch(items, out)
//
// Ciphertext is recognised solely by [CipherPrefix].
package crypto
