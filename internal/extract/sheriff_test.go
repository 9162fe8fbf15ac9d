package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheriffPage = `
<html><body>
<div class="panel panel-default">
  <div class="panel-heading">Inmate Information</div>
  <div class="panel-body">
    <h3>DOE, JOHN A</h3>
    <img src="/thumbs/542500123.jpg" alt="mugshot">
    <div class="row">
      <label>Race</label><span><span>White</span></span>
      <label>Sex</label><span><span>Male</span></span>
    </div>
    <div class="row">
      <label>DOB</label><span>01/02/1985</span>
      <label>Height</label><span><span>5'11"</span></span>
      <label>Weight</label><span><span>180</span></span>
    </div>
    <div class="row">
      <label>Hair</label><span><span>Brown</span></span>
      <label>Eyes</label><span><span>Blue</span></span>
      <label>Location</label><span><span>Main Jail</span></span>
    </div>
  </div>
</div>
<div class="panel panel-warning">
  <div class="panel-heading">Charge</div>
  <div class="panel-body">
    <div class="row">
      <label>Statute</label><span class="inputWarning">784.03</span>
      <label>Description</label><span class="inputWarning">BATTERY</span>
    </div>
    <div class="row">
      <label>Bond Amount</label><span class="inputWarning">500</span>
      <label>Bond Type</label><span class="inputWarning">Surety</span>
    </div>
  </div>
</div>
<div class="panel panel-warning">
  <div class="panel-heading">Charge</div>
  <div class="panel-body">
    <div class="row">
      <label>Statute</label><span class="inputWarning">843.02</span>
      <label>Description</label><span class="inputWarning">RESIST OFFICER W/O VIOLENCE</span>
    </div>
  </div>
</div>
</body></html>`

func TestSheriff_Valid(t *testing.T) {
	ex := Sheriff{}
	assert.True(t, ex.Valid(Parse(sheriffPage)))
	assert.False(t, ex.Valid(Parse(`<html><body><h1>Search</h1></body></html>`)))
}

func TestSheriff_Extract_Fields(t *testing.T) {
	ex := Sheriff{PhotoBase: "https://apps.sheriff.example"}
	rec := ex.Extract(Parse(sheriffPage), "542500123")

	assert.Equal(t, "542500123", rec.BookingID)
	assert.Equal(t, "DOE, JOHN A", rec.Name)
	assert.Equal(t, "https://apps.sheriff.example/thumbs/542500123.jpg", rec.PhotoURL)
	assert.Equal(t, "White", rec.Race)
	assert.Equal(t, "Male", rec.Sex)
	assert.Equal(t, "01/02/1985", rec.DOB)
	assert.Equal(t, `5'11"`, rec.Height)
	assert.Equal(t, "180", rec.Weight)
	assert.Equal(t, "Brown", rec.Hair)
	assert.Equal(t, "Blue", rec.Eyes)
	assert.Equal(t, "Main Jail", rec.Location)
}

func TestSheriff_Extract_Charges(t *testing.T) {
	rec := Sheriff{}.Extract(Parse(sheriffPage), "1")

	require.Len(t, rec.Charges, 2)
	assert.Equal(t, "784.03", rec.Charges[0].Statute)
	assert.Equal(t, "BATTERY", rec.Charges[0].Description)
	assert.Equal(t, "500", rec.Charges[0].BondAmount)
	assert.Equal(t, "Surety", rec.Charges[0].BondType)
	assert.Equal(t, "843.02", rec.Charges[1].Statute)
	assert.Equal(t, "", rec.Charges[1].BondAmount)
}

func TestSheriff_Extract_MissingAnchorsYieldEmpty(t *testing.T) {
	page := `
	<div class="panel-heading">Inmate Information</div>
	<h3>ROE, JANE</h3>
	<label>Race</label><span><span>Black</span></span>`

	rec := Sheriff{}.Extract(Parse(page), "7")
	assert.Equal(t, "ROE, JANE", rec.Name)
	assert.Equal(t, "Black", rec.Race)
	assert.Equal(t, "", rec.Sex)
	assert.Equal(t, "", rec.Location)
	assert.Empty(t, rec.Charges)
}

func TestSheriff_Extract_LabelWithoutValueGetsEmpty(t *testing.T) {
	// Three labels but two value spans: the unmatched label keeps an
	// empty value instead of the entry being truncated.
	page := `
	<div class="panel-heading">Inmate Information</div>
	<div class="panel panel-warning">
	  <div class="panel-heading">Charge</div>
	  <div class="row">
	    <label>Statute</label>
	    <label>Description</label>
	    <label>Bond Amount</label>
	    <span class="inputWarning">784.03</span>
	    <span class="inputWarning">BATTERY</span>
	  </div>
	</div>`

	rec := Sheriff{}.Extract(Parse(page), "1")
	require.Len(t, rec.Charges, 1)
	assert.Equal(t, "784.03", rec.Charges[0].Statute)
	assert.Equal(t, "BATTERY", rec.Charges[0].Description)
	assert.Equal(t, "", rec.Charges[0].BondAmount)
}

func TestSheriff_Extract_UnknownChargeLabelIgnored(t *testing.T) {
	page := `
	<div class="panel-heading">Inmate Information</div>
	<div class="panel panel-warning">
	  <div class="panel-heading">Charge</div>
	  <div class="row">
	    <label>Arresting Agency</label><span class="inputWarning">PD</span>
	  </div>
	</div>`

	rec := Sheriff{}.Extract(Parse(page), "1")
	assert.Empty(t, rec.Charges)
}

func TestSheriff_Extract_NonChargePanelSkipped(t *testing.T) {
	page := `
	<div class="panel-heading">Inmate Information</div>
	<div class="panel panel-warning">
	  <div class="panel-heading">Hold</div>
	  <div class="row">
	    <label>Statute</label><span class="inputWarning">999</span>
	  </div>
	</div>`

	rec := Sheriff{}.Extract(Parse(page), "1")
	assert.Empty(t, rec.Charges)
}
