package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/models"
)

const displayTime = "2006-01-02 15:04"

// short truncates a hash for tables
func short(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "..."
}

func box(title, body string) {
	pterm.DefaultBox.
		WithLeftPadding(4).
		WithRightPadding(4).
		WithTitle(title).
		WithTitleTopCenter().
		Println(body)
}

func renderMineResult(res models.MineResult) {
	box(pterm.LightGreen("|BLOCK SEALED|"), pterm.Sprintfln("Block:        #%d", res.BlockIndex)+
		pterm.Sprintfln("Transactions: %d", res.TxCount)+
		pterm.Sprintfln("Nonce:        %d", res.Nonce)+
		pterm.Sprintf("Hash:         %s", res.Hash))
}

func renderBulkResults(results []ledger.BulkResult) {
	data := pterm.TableData{{"#", "NIM", "Transaction ID", "Result"}}
	accepted := 0
	for i, r := range results {
		outcome := pterm.Green("pending")
		if r.Error != "" {
			outcome = pterm.Red(r.Error)
		} else {
			accepted++
		}
		data = append(data, []string{strconv.Itoa(i + 1), r.StudentID, r.TransactionID, outcome})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()

	if accepted == len(results) {
		pterm.Success.Printfln("Added %d transactions (pending)", accepted)
	} else {
		pterm.Warning.Printfln("Added %d of %d transactions (pending)", accepted, len(results))
	}
}

func renderVerification(res models.VerificationResult) {
	if !res.Verified {
		box(pterm.LightRed("|NOT VERIFIED|"), "Message: "+res.Message)
		return
	}
	tx := res.Transaction
	body := pterm.Sprintfln("Block:  #%d", res.BlockIndex) +
		pterm.Sprintfln("Name:   %s", tx.StudentName) +
		pterm.Sprintfln("Degree: %s", tx.Degree) +
		pterm.Sprintfln("Major:  %s", tx.Major) +
		pterm.Sprintf("Block hash: %s", short(res.BlockHash))
	box(pterm.LightGreen("|VERIFIED|"), body)
}

func renderStudentDegrees(nim string, degrees []models.DegreeRecord) {
	if len(degrees) == 0 {
		pterm.Warning.Printfln("No degrees found for student %s", nim)
		return
	}

	pterm.DefaultSection.Printfln("Degrees for student %s", nim)
	data := pterm.TableData{{"#", "Degree", "Major", "GPA", "Graduated", "Block", "Document hash"}}
	for i, d := range degrees {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			d.Degree.Degree,
			d.Degree.Major,
			d.Degree.GPA,
			d.Degree.GraduationDate,
			"#" + strconv.Itoa(d.BlockIndex),
			short(d.Degree.DocumentHash),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func renderSummary(s models.Summary) {
	data := pterm.TableData{
		{"Total blocks", strconv.Itoa(s.TotalBlocks)},
		{"Total transactions", strconv.Itoa(s.TotalTransactions)},
		{"Degree transactions", strconv.Itoa(s.DegreeTransactions)},
		{"Pending transactions", strconv.Itoa(s.PendingTransactions)},
		{"Difficulty", strconv.Itoa(s.Difficulty)},
		{"Last hash", short(s.ChainHash)},
	}
	pterm.DefaultSection.Println("Blockchain information")
	_ = pterm.DefaultTable.WithBoxed().WithData(data).Render()
}

func renderValidity(res models.ValidityResult) {
	if res.Valid {
		pterm.Success.Println("Blockchain is valid")
		return
	}
	pterm.Error.Printfln("Blockchain is invalid at block #%d (%s): %s", res.BlockIndex, res.Violation, res.Message)
}

func renderBlocksTable(blocks []models.Block) {
	data := pterm.TableData{{"Block", "Timestamp", "Total TX", "Degree TX", "Hash", "Previous hash"}}
	for _, b := range blocks {
		data = append(data, []string{
			strconv.Itoa(b.Index),
			b.Timestamp.Local().Format(displayTime),
			strconv.Itoa(len(b.Transactions)),
			strconv.Itoa(b.DegreeCount()),
			short(b.Hash),
			short(b.PreviousHash),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func renderBlocksDetailed(blocks []models.Block) {
	for _, b := range blocks {
		body := pterm.Sprintfln("Timestamp:     %s", b.Timestamp.Format(time.RFC3339)) +
			pterm.Sprintfln("Hash:          %s", b.Hash) +
			pterm.Sprintfln("Previous hash: %s", b.PreviousHash) +
			pterm.Sprintfln("Nonce:         %d", b.Nonce) +
			pterm.Sprintf("Transactions:  %d", len(b.Transactions))
		box(pterm.LightCyan(fmt.Sprintf("|BLOCK #%d|", b.Index)), body)

		for i, tx := range b.Transactions {
			if !tx.IsDegree() {
				pterm.Printfln("  %d. %s", i+1, tx.Kind)
				continue
			}
			pterm.Printfln("  %d. Degree %s", i+1, tx.ID)
			pterm.Printfln("     NIM:    %s", tx.StudentID)
			pterm.Printfln("     Name:   %s", tx.StudentName)
			pterm.Printfln("     Degree: %s", tx.Degree)
			pterm.Printfln("     Major:  %s", tx.Major)
			pterm.Printfln("     GPA:    %s", tx.GPA)
			pterm.Printfln("     Hash:   %s", short(tx.DocumentHash))
		}
		pterm.Println()
	}
}
