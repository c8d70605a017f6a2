/*
Package wallet is the ledger engine: it owns every balance mutation.

Three operations move money:
  - ProcessTopUp turns a verified transfer slip into wallet credit. Each
    attempt is recorded as a PENDING ledger entry first and always ends
    SUCCESS or FAILED; an oracle reference can be redeemed once.
  - Transfer moves value between two users' wallets atomically.
  - Purchase debits a wallet for a storefront checkout.

Usage:

	svc := wallet.NewService(walletRepo, userRepo, slipClient, proofs, cache, wallet.Config{}, metrics)

	res := svc.ProcessTopUp(ctx, userID, proof, decimal.NewFromInt(500))
	if !res.Success {
	    // res.Code is one of the codes in internal/errors
	}

Operations return result values rather than errors. A result's Code is
empty on success and a domain error code otherwise.

Concurrency:

Balance changes happen inside one database transaction that row-locks the
wallets involved. Transfers lock both wallets in ascending wallet id order.
Reference uniqueness is enforced by the used_slip_references unique index
in the same transaction that credits the wallet, so concurrent submissions
of one slip credit at most once.

Cache:

Wallet snapshots are cached for reads (GetBalance, GetOrCreateWallet) and
invalidated after every commit that touches the wallet.
*/
package wallet
