package gemp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpdateDecodesEventBatch(t *testing.T) {
	doc := []byte(`<gameState cn="17">
		<ge type="P" allParticipantIds="vader_fan,rebel_scum"/>
		<ge type="PCIP" cardId="42" blueprintId="1_1" zone="AT_LOCATION" participantId="vader_fan" locationIndex="2"/>
		<ge type="M" message="vader_fan deploys Darth Vader"/>
	</gameState>`)

	update, err := parseUpdate(doc)
	require.NoError(t, err)
	assert.Equal(t, 17, update.Channel)
	require.Len(t, update.Events, 3)

	placement := update.Events[1]
	assert.Equal(t, EventPutCardInPlay, placement.Type)
	assert.Equal(t, "42", placement.CardID)
	assert.Equal(t, "1_1", placement.BlueprintID)
	assert.Equal(t, 2, placement.LocationIndexInt())
	assert.False(t, placement.FlippedBool())
}

func TestParseUpdateDecodesDecisionParameters(t *testing.T) {
	doc := []byte(`<update cn="18">
		<ge type="D" id="7" decisionType="CARD_ACTION_CHOICE" text="Choose an action">
			<parameter name="actionId" value="0"/>
			<parameter name="actionText" value="Deploy Darth Vader"/>
			<parameter name="cardId" value="42"/>
			<parameter name="actionId" value="1"/>
			<parameter name="actionText" value="Activate Force"/>
		</ge>
	</update>`)

	update, err := parseUpdate(doc)
	require.NoError(t, err)
	require.Len(t, update.Events, 1)

	d := update.Events[0]
	assert.Equal(t, EventDecision, d.Type)
	assert.Equal(t, "7", d.ID)
	assert.Equal(t, "CARD_ACTION_CHOICE", d.DecisionType)
	require.Len(t, d.Params, 5)
	assert.Equal(t, "actionId", d.Params[0].Name)
	assert.Equal(t, "Activate Force", d.Params[4].Value)
}

func TestParseUpdateDecodesGameStats(t *testing.T) {
	doc := []byte(`<update cn="19">
		<ge type="GS">
			<playerCounts participantId="vader_fan" reserveDeck="30" forcePile="8" usedPile="2" lostPile="4" handSize="7" attrition="0" battleDamage="0"/>
			<playerCounts participantId="rebel_scum" reserveDeck="28" forcePile="6" usedPile="1" lostPile="6" handSize="5" attrition="2" battleDamage="5"/>
			<locationPower participantId="vader_fan" index="2" power="7"/>
			<locationPower participantId="rebel_scum" index="2" power="-1"/>
		</ge>
	</update>`)

	update, err := parseUpdate(doc)
	require.NoError(t, err)
	require.Len(t, update.Events, 1)

	gs := update.Events[0]
	require.Len(t, gs.PlayerCounts, 2)
	assert.Equal(t, 30, gs.PlayerCounts[0].ReserveDeck)
	assert.Equal(t, 2, gs.PlayerCounts[1].Attrition)
	require.Len(t, gs.LocationPowers, 2)
	assert.Equal(t, -1, gs.LocationPowers[1].Power)
}

func TestLocationIndexIntDefaultsToSentinel(t *testing.T) {
	e := &RawEvent{}
	assert.Equal(t, -1, e.LocationIndexInt())
	e.LocationIndex = "bogus"
	assert.Equal(t, -1, e.LocationIndexInt())
}
